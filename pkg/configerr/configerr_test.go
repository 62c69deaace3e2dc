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

package configerr

import (
	"errors"
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"invalid", InvalidArgument("cores must be positive, got %d", 0), ErrInvalidArgument, "invalid argument: cores must be positive, got 0"},
		{"not found", NotFound("no config %q", "x"), ErrNotFound, `not found: no config "x"`},
		{"malformed", Malformed("missing key %s", ".timeout"), ErrMalformed, "malformed legacy config: missing key .timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.kind)
			}
			if got := tt.err.Error(); got != tt.msg {
				t.Errorf("Error() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"5litepod", "5p", "4", "6e"}
	tests := []struct {
		in   string
		want string
	}{
		{"5lightpod", "5litepod"},
		{"5e", "5p"},
		{"completely-unrelated", ""},
	}
	for _, tt := range tests {
		if got := Suggest(tt.in, candidates); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHint(t *testing.T) {
	if got, want := Hint("jax-tset", []string{"jax-test"}), ` (did you mean "jax-test"?)`; got != want {
		t.Errorf("Hint() = %q, want %q", got, want)
	}
	if got := Hint("zzzzzzzzzz", []string{"jax-test"}); got != "" {
		t.Errorf("Hint() = %q, want empty", got)
	}
}
