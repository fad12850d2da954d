/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package filter

import (
	"fmt"
	"strings"

	"github.com/blnkfinance/sieve/params"
)

// IsBlank reports whether v carries no usable input: nil, a whitespace-only
// string, or an empty list or map. Booleans are never blank.
func IsBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	case params.Map:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// CoerceBool casts v permissively. "true", "1" and true are true; "false",
// "0" and false are false. ok is false for anything else.
func CoerceBool(v interface{}) (value bool, ok bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case int:
		switch val {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

// asList returns v as a list. Scalars become a single-element list.
func asList(v interface{}) []interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return val
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return []interface{}{v}
	}
}

// compact drops blank entries.
func compact(list []interface{}) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, v := range list {
		if !IsBlank(v) {
			out = append(out, v)
		}
	}
	return out
}

// scalar returns v if it is a single non-blank value.
func scalar(v interface{}) (interface{}, bool) {
	switch v.(type) {
	case []interface{}, []string, params.Map, map[string]interface{}:
		return nil, false
	}
	if IsBlank(v) {
		return nil, false
	}
	return v, true
}

func stringOf(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
