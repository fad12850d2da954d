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
	"errors"

	"github.com/blnkfinance/sieve/model"
)

var (
	ErrInvalidName = errors.New("invalid definition name")
	ErrSortTarget  = errors.New("unable to determine sort target")
	ErrMissingKind = errors.New("filter kind is required")
	ErrBehavior    = errors.New("behavior has neither a name nor a function")

	// ErrUnknownOperation is returned when a named behavior is not exposed by
	// the resource.
	ErrUnknownOperation = model.ErrUnknownOperation
)
