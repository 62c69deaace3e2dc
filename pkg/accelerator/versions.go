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

package accelerator

import (
	"xlml/pkg/configerr"
)

// TpuVersion is a Cloud TPU generation as it appears in accelerator names, without the "v" prefix.
type TpuVersion string

const (
	TpuV2       TpuVersion = "2"
	TpuV3       TpuVersion = "3"
	TpuV4       TpuVersion = "4"
	TpuV4i      TpuVersion = "4i"
	TpuV5e      TpuVersion = "5litepod"
	TpuV5p      TpuVersion = "5p"
	TpuTrillium TpuVersion = "6e"
)

var tpuVersions = []TpuVersion{TpuV2, TpuV3, TpuV4, TpuV4i, TpuV5e, TpuV5p, TpuTrillium}

// CpuVersion is a Compute Engine machine family used for CPU tests.
type CpuVersion string

const (
	CpuM1Megamem  CpuVersion = "m1-megamem-96"
	CpuN2Standard CpuVersion = "n2-standard-64"
)

var cpuVersions = []CpuVersion{CpuM1Megamem, CpuN2Standard}

// TpuVersions returns every known TPU version.
func TpuVersions() []TpuVersion {
	return append([]TpuVersion(nil), tpuVersions...)
}

// CpuVersions returns every known CPU device type.
func CpuVersions() []CpuVersion {
	return append([]CpuVersion(nil), cpuVersions...)
}

// Valid reports whether v is a known TPU version.
func (v TpuVersion) Valid() bool {
	for _, known := range tpuVersions {
		if v == known {
			return true
		}
	}
	return false
}

// Valid reports whether v is a known CPU device type.
func (v CpuVersion) Valid() bool {
	for _, known := range cpuVersions {
		if v == known {
			return true
		}
	}
	return false
}

// ParseTpuVersion maps s (e.g. "4" or "5litepod") onto a known TPU version.
func ParseTpuVersion(s string) (TpuVersion, error) {
	if v := TpuVersion(s); v.Valid() {
		return v, nil
	}
	names := make([]string, len(tpuVersions))
	for i, v := range tpuVersions {
		names[i] = string(v)
	}
	return "", configerr.InvalidArgument("unknown TPU version %q%s", s, configerr.Hint(s, names))
}

// ParseCpuVersion maps s (e.g. "n2-standard-64") onto a known CPU device type.
func ParseCpuVersion(s string) (CpuVersion, error) {
	if v := CpuVersion(s); v.Valid() {
		return v, nil
	}
	names := make([]string, len(cpuVersions))
	for i, v := range cpuVersions {
		names[i] = string(v)
	}
	return "", configerr.InvalidArgument("unknown CPU device type %q%s", s, configerr.Hint(s, names))
}
