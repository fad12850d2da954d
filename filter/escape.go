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

import "strings"

var patternEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapePattern backslash-escapes the LIKE metacharacters %, _ and \ so s
// matches literally inside a pattern.
func EscapePattern(s string) string {
	return patternEscaper.Replace(s)
}

// GlobPattern turns a user pattern into a LIKE pattern by translating * to %.
// Everything else passes through untouched.
func GlobPattern(s string) string {
	return strings.ReplaceAll(s, "*", "%")
}

// ContainsPattern is %s% with s escaped.
func ContainsPattern(s string) string {
	return "%" + EscapePattern(s) + "%"
}
