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

package legacy

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/itchyny/gojq"

	"xlml/pkg/configerr"
)

// valueKind is the validation rule applied to a document value.
type valueKind int

const (
	stringValue  valueKind = iota
	intValue               // integral JSON number
	secondsValue           // non-negative JSON number of seconds
	versionValue           // integral JSON number or string, rendered as written
	argvValue              // JSON array of strings
)

func (k valueKind) String() string {
	switch k {
	case stringValue:
		return "a string"
	case intValue:
		return "an integer"
	case secondsValue:
		return "a number of seconds"
	case versionValue:
		return "a version number"
	case argvValue:
		return "a list of strings"
	}
	return fmt.Sprintf("valueKind(%d)", int(k))
}

// maxSeconds is the longest timeout a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// record collects the values read from a legacy document before they are
// turned into a test configuration.
type record struct {
	testName        string
	tpuVersion      string
	tpuVariant      string
	tpuCores        int
	softwareVersion string
	timeout         time.Duration

	setup        string
	runTest      string
	pytorchSetup string
	extraSetup   string
	exports      string

	image           string
	imageTag        string
	gpuCount        int
	acceleratorType string
	numHosts        int

	entrypoint []string
	command    []string
}

// binding maps one document path onto a record field.
type binding struct {
	path string
	kind valueKind
	set  func(r *record, v any)
	code *gojq.Code
}

// field compiles path and returns its binding. It panics on an invalid path,
// so bindings are only declared in package-level tables.
func field(path string, kind valueKind, set func(r *record, v any)) binding {
	q, err := gojq.Parse(path)
	if err != nil {
		panic(fmt.Sprintf("legacy: invalid path %q: %v", path, err))
	}
	code, err := gojq.Compile(q)
	if err != nil {
		panic(fmt.Sprintf("legacy: cannot compile path %q: %v", path, err))
	}
	return binding{path: path, kind: kind, set: set, code: code}
}

// recipe is an ordered field table.
type recipe []binding

func concat(recipes ...recipe) recipe {
	var out recipe
	for _, r := range recipes {
		out = append(out, r...)
	}
	return out
}

// apply reads every field of the recipe from doc into a new record. The first
// missing or ill-typed field is reported as configerr.ErrMalformed.
func (rc recipe) apply(name string, doc Document) (record, error) {
	var r record
	for _, b := range rc {
		v, err := b.extract(doc)
		if err != nil {
			return record{}, configerr.Malformed("%s: %v", name, err)
		}
		b.set(&r, v)
	}
	return r, nil
}

func (b binding) extract(doc Document) (any, error) {
	iter := b.code.Run(map[string]any(doc))
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("missing key %s", b.path)
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("%s: %v", b.path, err)
	}
	if v == nil {
		return nil, fmt.Errorf("missing key %s", b.path)
	}
	out, ok := decode(b.kind, v)
	if !ok {
		return nil, fmt.Errorf("%s: expected %s, got %s", b.path, b.kind, describe(v))
	}
	return out, nil
}

// decode converts a JSON value according to kind. The result is a string,
// int, time.Duration or []string.
func decode(kind valueKind, v any) (any, bool) {
	switch kind {
	case stringValue:
		s, ok := v.(string)
		return s, ok
	case intValue:
		return integer(v)
	case secondsValue:
		f, ok := number(v)
		if !ok || f < 0 || f > maxSeconds {
			return nil, false
		}
		return time.Duration(f * float64(time.Second)), true
	case versionValue:
		if s, ok := v.(string); ok {
			return s, true
		}
		n, ok := integer(v)
		if !ok {
			return nil, false
		}
		return strconv.Itoa(n), true
	case argvValue:
		list, ok := v.([]any)
		if !ok {
			return nil, false
		}
		argv := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			argv[i] = s
		}
		return argv, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func integer(v any) (int, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case float64, int:
		return fmt.Sprintf("number %v", v)
	case bool:
		return "a boolean"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}
