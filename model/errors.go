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

package model

import (
	"errors"
	"fmt"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var ErrUnknownOperation = errors.New("unknown operation")

// maxSuggestionDistance bounds how far a suggested name may be from the
// requested one.
const maxSuggestionDistance = 3

// Lookup returns the named operation or an error wrapping ErrUnknownOperation
// that suggests the closest exposed name.
func (r *Resource) Lookup(name string) (Operation, error) {
	if op, ok := r.Operation(name); ok {
		return op, nil
	}
	if s := Suggest(name, r.OperationNames()); s != "" {
		return nil, fmt.Errorf("%w %q on %s, did you mean %q?", ErrUnknownOperation, name, r.Name, s)
	}
	return nil, fmt.Errorf("%w %q on %s", ErrUnknownOperation, name, r.Name)
}

// Suggest returns the candidate closest to name, or "" if none is close enough.
func Suggest(name string, candidates []string) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, c := range candidates {
		d := levenshtein.DistanceForStrings([]rune(name), []rune(c), levenshtein.DefaultOptions)
		if d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
