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

package testconfig

// Summary is the scheduler-facing view of a Config, suitable for printing.
type Summary struct {
	Kind         Kind   `yaml:"kind"`
	BenchmarkID  string `yaml:"benchmarkId"`
	Accelerator  string `yaml:"accelerator"`
	TaskOwner    string `yaml:"taskOwner"`
	GCSSubfolder string `yaml:"gcsSubfolder"`
	Timeout      string `yaml:"timeout,omitempty"`
	SetupScript  string `yaml:"setupScript,omitempty"`
	TestScript   string `yaml:"testScript"`
}

// Describe derives the Summary of cfg.
func Describe(cfg Config) Summary {
	s := Summary{
		Kind:         cfg.Kind(),
		BenchmarkID:  cfg.BenchmarkID(),
		Accelerator:  cfg.AcceleratorName(),
		TaskOwner:    cfg.TaskOwner(),
		GCSSubfolder: cfg.GCSSubfolder(),
		TestScript:   cfg.TestScript(),
	}
	if d, ok := cfg.Timeout(); ok {
		s.Timeout = d.String()
	}
	if script, ok := cfg.SetupScript(); ok {
		s.SetupScript = script
	}
	return s
}
