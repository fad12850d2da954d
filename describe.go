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

package sieve

import (
	"fmt"

	"github.com/blnkfinance/sieve/filter"
)

// FilterInfo is the render-time description of one declared filter.
type FilterInfo struct {
	Key string `json:"key"`
	filter.Info
}

// Describe returns metadata for every filter in declaration order. Choice
// suppliers are evaluated here, never during Apply.
func (p *Profile) Describe() ([]FilterInfo, error) {
	out := make([]FilterInfo, 0, len(p.filters.keys))
	for _, key := range p.filters.keys {
		info, err := filter.Describe(p.filters.entries[key])
		if err != nil {
			return nil, fmt.Errorf("describe filter %q: %w", key, err)
		}
		out = append(out, FilterInfo{Key: key, Info: info})
	}
	return out, nil
}
