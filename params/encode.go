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

package params

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Pair is one key=value of an encoded query string.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered query string. Unlike url.Values it keeps the order in
// which pairs were added, which is what makes encodings canonical.
type Pairs []Pair

// Add appends key=value.
func (p *Pairs) Add(key, value string) {
	*p = append(*p, Pair{Key: key, Value: value})
}

// Append flattens v under key using the bracket convention Decode reads:
// strings as key=v, lists as key[]=v, maps as key[k]=... with sorted keys.
// nil values produce nothing.
func (p *Pairs) Append(key string, v interface{}) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		p.Add(key, val)
	case []string:
		for _, s := range val {
			p.Add(key+"[]", s)
		}
	case []interface{}:
		for _, item := range val {
			if item == nil {
				continue
			}
			p.Add(key+"[]", fmt.Sprint(item))
		}
	default:
		if m, ok := AsMap(v); ok {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				p.Append(key+"["+k+"]", m[k])
			}
			return
		}
		p.Add(key, fmt.Sprint(val))
	}
}

// Encode renders the pairs in order, escaping keys and values.
func (p Pairs) Encode() string {
	var b strings.Builder
	for i, pair := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}

// Values converts the pairs to url.Values, losing cross-key order.
func (p Pairs) Values() url.Values {
	v := url.Values{}
	for _, pair := range p {
		v.Add(pair.Key, pair.Value)
	}
	return v
}

// Nest builds "ns[a][b]" from a namespace and path segments. An empty
// namespace makes the first segment the root key.
func Nest(namespace string, segments ...string) string {
	if namespace == "" {
		if len(segments) == 0 {
			return ""
		}
		namespace, segments = segments[0], segments[1:]
	}
	var b strings.Builder
	b.WriteString(namespace)
	for _, s := range segments {
		b.WriteByte('[')
		b.WriteString(s)
		b.WriteByte(']')
	}
	return b.String()
}
