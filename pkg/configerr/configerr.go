// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package configerr defines the error kinds shared by test configuration
// construction and legacy config adaptation. Callers match them with errors.Is
// and treat all of them as fatal for the affected test job.
package configerr

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agext/levenshtein"
)

var (
	// ErrInvalidArgument reports a field that fails validation at construction time.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound reports a legacy document name the loader cannot resolve.
	ErrNotFound = errors.New("not found")
	// ErrMalformed reports a legacy document that is missing keys, has keys of
	// the wrong type or encodes an unknown accelerator.
	ErrMalformed = errors.New("malformed legacy config")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Malformed returns an error wrapping ErrMalformed.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// maxSuggestionDistance bounds how different a candidate may be and still be suggested.
const maxSuggestionDistance = 3

// Suggest returns the candidate closest to s, or "" if nothing is close enough.
// Ties are broken alphabetically so the result is stable.
func Suggest(s string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range sorted {
		if d := levenshtein.Distance(s, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Hint formats a " (did you mean ...?)" suffix, or "" when there is no suggestion.
func Hint(s string, candidates []string) string {
	if sug := Suggest(s, candidates); sug != "" {
		return fmt.Sprintf(" (did you mean %q?)", sug)
	}
	return ""
}
