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

package cmd

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"xlml/pkg/configerr"
	"xlml/pkg/logging"
	"xlml/pkg/testconfig"
)

const jaxDoc = `{
  "testName": "jax-resnet",
  "accelerator": {"version": 4, "variant": "", "size": 8},
  "tpuSettings": {"softwareVersion": "tpu-vm-base"},
  "timeout": 3600,
  "setup": "pip install jax",
  "runTest": "python3 resnet.py"
}`

const gpuDoc = `{
  "image": "gcr.io/xl-ml-test/pytorch-xla",
  "imageTag": "nightly",
  "accelerator": {"count": 2, "accelerator_type": "nvidia-tesla-v100", "num_hosts": 1},
  "entrypoint": ["bash", "-cxue"],
  "command": ["python3", "train.py"],
  "timeout": 1800
}`

// execute runs the root command against an in-memory configs directory and
// returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range map[string]string{
		"tests/jax/resnet.json":       jaxDoc,
		"tests/pytorch/gpu-v100.json": gpuDoc,
	} {
		if err := afero.WriteFile(fs, "/configs/"+name, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	oldFs := appFs
	appFs = fs
	logging.SetOutput(io.Discard)
	t.Cleanup(func() {
		appFs = oldFs
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--configs-dir=/configs"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDescribeCommand(t *testing.T) {
	out, err := execute(t, "describe", "--family=jax", "tests/jax/resnet.json")
	if err != nil {
		t.Fatalf("describe error = %v", err)
	}
	var got testconfig.Summary
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("describe output is not YAML: %v\n%s", err, out)
	}
	want := testconfig.Summary{
		Kind:         testconfig.KindJSonnetTpuVm,
		BenchmarkID:  "jax-resnet-v4-8",
		Accelerator:  "v4-8",
		TaskOwner:    testconfig.Unowned,
		GCSSubfolder: testconfig.Unowned,
		Timeout:      "1h0m0s",
		SetupScript:  "set -xue\npip install jax",
		TestScript:   "set -xue\n\nbash -c 'python3 resnet.py'",
	}
	if got != want {
		t.Errorf("describe = %+v, want %+v", got, want)
	}
}

func TestDescribeCommandErrors(t *testing.T) {
	_, err := execute(t, "describe", "--family=jax", "tests/jax/resnt.json")
	if !errors.Is(err, configerr.ErrNotFound) {
		t.Errorf("describe of a missing config error = %v, want %v", err, configerr.ErrNotFound)
	}
	_, err = execute(t, "describe", "--family=tensorflow", "tests/jax/resnet.json")
	if !errors.Is(err, configerr.ErrInvalidArgument) {
		t.Errorf("describe with an unknown family error = %v, want %v", err, configerr.ErrInvalidArgument)
	}
	_, err = execute(t, "describe", "--family=pytorch-gpu", "tests/jax/resnet.json")
	if !errors.Is(err, configerr.ErrMalformed) {
		t.Errorf("describe with the wrong family error = %v, want %v", err, configerr.ErrMalformed)
	}
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if want := "tests/jax/resnet.json\ntests/pytorch/gpu-v100.json\n"; out != want {
		t.Errorf("list = %q, want %q", out, want)
	}

	out, err = execute(t, "list", "tests/pytorch")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if want := "tests/pytorch/gpu-v100.json\n"; out != want {
		t.Errorf("list tests/pytorch = %q, want %q", out, want)
	}
}

func TestManifestCommand(t *testing.T) {
	out, err := execute(t, "manifest", "--family=pytorch-gpu", "--workload-name=gpu-v100", "tests/pytorch/gpu-v100.json")
	if err != nil {
		t.Fatalf("manifest error = %v", err)
	}
	for _, want := range []string{
		"kind: JobSet",
		"name: gpu-v100",
		`image: "gcr.io/xl-ml-test/pytorch-xla:nightly"`,
		`nvidia.com/gpu: "2"`,
		`cloud.google.com/gke-accelerator: "nvidia-tesla-v100"`,
		"activeDeadlineSeconds: 1800",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("manifest output lacks %q:\n%s", want, out)
		}
	}

	_, err = execute(t, "manifest", "--family=jax", "--workload-name=jax", "tests/jax/resnet.json")
	if !errors.Is(err, configerr.ErrInvalidArgument) {
		t.Errorf("manifest of a TPU VM config error = %v, want %v", err, configerr.ErrInvalidArgument)
	}
}

func TestListCommandPatternsFrom(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, body := range map[string]string{
		"/configs/tests/jax/resnet.json":       jaxDoc,
		"/configs/tests/pytorch/gpu-v100.json": gpuDoc,
		"/patterns":                            "# TPU configs only\ntests/**\n!tests/pytorch\n",
	} {
		if err := afero.WriteFile(fs, name, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	oldFs := appFs
	appFs = fs
	logging.SetOutput(io.Discard)
	t.Cleanup(func() {
		appFs = oldFs
		patternsFrom = ""
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list", "--patterns-from=/patterns", "--configs-dir=/configs"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if want := "tests/jax/resnet.json\n"; out.String() != want {
		t.Errorf("list --patterns-from = %q, want %q", out.String(), want)
	}
}
