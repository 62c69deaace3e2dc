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

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"xlml/pkg/accelerator"
	"xlml/pkg/configerr"
)

var (
	v4x8 = accelerator.Tpu{Version: accelerator.TpuV4, Cores: 8, Network: "default", Subnetwork: "default"}
	a100 = accelerator.Gpu{MachineType: "a2-highgpu-1g", ImageFamily: "common-cu121", Count: 1, AcceleratorType: "nvidia-tesla-a100"}
	n2   = accelerator.Cpu{DeviceType: accelerator.CpuN2Standard, MachineCount: 1}

	setUp = []string{"pip install -U jax", "git clone https://github.com/google/maxtext.git"}
	run   = []string{"cd maxtext", "python3 MaxText/train.py MaxText/configs/base.yml"}
	image = "gcr.io/cloud-ml-auto-solutions/maxtext:nightly"
)

func must[T Config](cfg T, err error) T {
	if err != nil {
		panic(err)
	}
	return cfg
}

// allVariants builds one instance of each variant with the given multiplicity.
func allVariants(t *testing.T, n int) map[Kind]Config {
	t.Helper()
	return map[Kind]Config{
		KindTpuVm:        must(NewTpuVmTest(v4x8, "maxtext", setUp, run, WithNumSlices(n))),
		KindGpuVm:        must(NewGpuVmTest(a100, "maxtext", setUp, run)),
		KindCpuGke:       must(NewCpuGkeTest(n2, "maxtext", "cpu-cluster", image, setUp, run, WithNumSlices(n))),
		KindTpuGke:       must(NewTpuGkeTest(v4x8, "maxtext", "tpu-cluster", image, setUp, run, WithNumSlices(n))),
		KindGpuXpk:       must(NewGpuXpkTest(a100, "maxtext", "gpu-cluster", image, setUp, run, WithNumSlices(n))),
		KindJSonnetTpuVm: must(NewJSonnetTpuVmTest(v4x8, "maxtext", "pip install jax", "", []string{"python3", "train.py"}, WithNumSlices(n))),
		KindGpuGke:       must(NewGpuGkeTest(a100, "maxtext", []string{"bash", "entry.sh"}, []string{"python3", "train.py"}, image, WithNumHosts(n))),
	}
}

func TestBenchmarkIDSingleSlice(t *testing.T) {
	wantByAccelerator := map[Kind]string{
		KindTpuVm:        "maxtext-v4-8",
		KindGpuVm:        "maxtext-nvidia-tesla-a100",
		KindCpuGke:       "maxtext-n2-standard-64-1",
		KindTpuGke:       "maxtext-v4-8",
		KindGpuXpk:       "maxtext-nvidia-tesla-a100",
		KindJSonnetTpuVm: "maxtext-v4-8",
		KindGpuGke:       "maxtext-nvidia-tesla-a100",
	}
	for kind, cfg := range allVariants(t, 1) {
		t.Run(string(kind), func(t *testing.T) {
			if got, want := cfg.BenchmarkID(), wantByAccelerator[kind]; got != want {
				t.Errorf("BenchmarkID() = %q, want %q", got, want)
			}
		})
	}
}

// Only the TPU variants embed the slice count. The GPU and CPU cluster variants
// and GpuGkeTest carry a multiplicity but leave it out of the id, so ids of
// multi-host GPU jobs collide across host counts. This pins that behavior.
func TestBenchmarkIDMultiSlice(t *testing.T) {
	want := map[Kind]string{
		KindTpuVm:        "maxtext-3xv4-8",
		KindGpuVm:        "maxtext-nvidia-tesla-a100",
		KindCpuGke:       "maxtext-n2-standard-64-1",
		KindTpuGke:       "maxtext-3xv4-8",
		KindGpuXpk:       "maxtext-nvidia-tesla-a100",
		KindJSonnetTpuVm: "maxtext-3xv4-8",
		KindGpuGke:       "maxtext-nvidia-tesla-a100",
	}
	for kind, cfg := range allVariants(t, 3) {
		t.Run(string(kind), func(t *testing.T) {
			if got := cfg.BenchmarkID(); got != want[kind] {
				t.Errorf("BenchmarkID() = %q, want %q", got, want[kind])
			}
		})
	}
}

func TestVMScripts(t *testing.T) {
	tpu := must(NewTpuVmTest(v4x8, "maxtext", setUp, run))
	gpu := must(NewGpuVmTest(a100, "maxtext", setUp, run))

	wantSetup := "set -xue\npip install -U jax\ngit clone https://github.com/google/maxtext.git"
	wantTest := "set -xue\ncd maxtext\npython3 MaxText/train.py MaxText/configs/base.yml"
	for _, cfg := range []Config{tpu, gpu} {
		setup, ok := cfg.SetupScript()
		if !ok {
			t.Errorf("%s: SetupScript() ok = false, want true", cfg.Kind())
		}
		if setup != wantSetup {
			t.Errorf("%s: SetupScript() = %q, want %q", cfg.Kind(), setup, wantSetup)
		}
		if got := cfg.TestScript(); got != wantTest {
			t.Errorf("%s: TestScript() = %q, want %q", cfg.Kind(), got, wantTest)
		}
		if !strings.HasPrefix(cfg.TestScript(), "set -xue\n") {
			t.Errorf("%s: TestScript() lacks strict preamble", cfg.Kind())
		}
	}
}

func TestClusterPodScripts(t *testing.T) {
	cpu := must(NewCpuGkeTest(n2, "maxtext", "cpu-cluster", image, setUp, run))
	tpu := must(NewTpuGkeTest(v4x8, "maxtext", "tpu-cluster", image, setUp, run))

	wantSetup := "set -xue;pip install -U jax;git clone https://github.com/google/maxtext.git"
	wantTest := "set -xue;cd maxtext;python3 MaxText/train.py MaxText/configs/base.yml"
	for _, cfg := range []Config{cpu, tpu} {
		if got, _ := cfg.SetupScript(); got != wantSetup {
			t.Errorf("%s: SetupScript() = %q, want %q", cfg.Kind(), got, wantSetup)
		}
		if got := cfg.TestScript(); got != wantTest {
			t.Errorf("%s: TestScript() = %q, want %q", cfg.Kind(), got, wantTest)
		}
	}
}

func TestGpuXpkScriptsHaveNoPreamble(t *testing.T) {
	xpk := must(NewGpuXpkTest(a100, "maxtext", "gpu-cluster", image, setUp, run))

	setup, ok := xpk.SetupScript()
	if !ok {
		t.Fatalf("SetupScript() ok = false, want true")
	}
	if want := strings.Join(setUp, ";"); setup != want {
		t.Errorf("SetupScript() = %q, want %q", setup, want)
	}
	if want := strings.Join(run, ";"); xpk.TestScript() != want {
		t.Errorf("TestScript() = %q, want %q", xpk.TestScript(), want)
	}

	noSetup := must(NewGpuXpkTest(a100, "maxtext", "gpu-cluster", image, nil, run))
	if script, ok := noSetup.SetupScript(); ok {
		t.Errorf("SetupScript() = %q, true; want no setup phase", script)
	}
}

func TestJSonnetTpuVmScripts(t *testing.T) {
	cfg := must(NewJSonnetTpuVmTest(v4x8, "pt-nightly-resnet50", "pip install torch\ncd ~\npip install torchvision", "export PJRT_DEVICE=TPU",
		[]string{"python3", "test_train.py", "--model=resnet50", "--log dir"}))

	setup, _ := cfg.SetupScript()
	if want := "set -xue\npip install torch\ncd ~\npip install torchvision"; setup != want {
		t.Errorf("SetupScript() = %q, want %q", setup, want)
	}
	want := "set -xue\nexport PJRT_DEVICE=TPU\npython3 test_train.py --model=resnet50 '--log dir'"
	if got := cfg.TestScript(); got != want {
		t.Errorf("TestScript() = %q, want %q", got, want)
	}
}

func TestGpuGkeScripts(t *testing.T) {
	cfg := must(NewGpuGkeTest(a100, "pt-nightly-resnet50-gpu", []string{"bash", "-c", "nvidia-smi && \"$@\"", "--"},
		[]string{"python3", "train.py", "--batch size"}, image))

	setup, ok := cfg.SetupScript()
	if !ok {
		t.Fatalf("SetupScript() ok = false, want true")
	}
	if want := `bash -c 'nvidia-smi && "$@"' --`; setup != want {
		t.Errorf("SetupScript() = %q, want %q", setup, want)
	}
	if want := "python3 train.py '--batch size'"; cfg.TestScript() != want {
		t.Errorf("TestScript() = %q, want %q", cfg.TestScript(), want)
	}
	if cfg.GCSSubfolder() != "/tmp/" {
		t.Errorf("GCSSubfolder() = %q, want /tmp/", cfg.GCSSubfolder())
	}
}

func TestDerivationIsIdempotent(t *testing.T) {
	for kind, cfg := range allVariants(t, 2) {
		first := Describe(cfg)
		second := Describe(cfg)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s: Describe() changed between calls (-first +second):\n%s", kind, diff)
		}
	}
}

func TestInputsAreCopied(t *testing.T) {
	cmds := []string{"echo one"}
	cfg := must(NewTpuVmTest(v4x8, "copy", nil, cmds))
	cmds[0] = "echo mutated"
	if got := cfg.TestScript(); got != "set -xue\necho one" {
		t.Errorf("TestScript() = %q after mutating input", got)
	}

	out := cfg.RunModelCmds()
	out[0] = "echo mutated"
	if got := cfg.RunModelCmds()[0]; got != "echo one" {
		t.Errorf("RunModelCmds()[0] = %q after mutating returned slice", got)
	}
}

func TestDefaultsAndOptions(t *testing.T) {
	cfg := must(NewTpuGkeTest(v4x8, "maxtext", "tpu-cluster", image, nil, run))
	if cfg.TaskOwner() != Unowned || cfg.GCSSubfolder() != Unowned {
		t.Errorf("owner/subfolder = %q/%q, want unowned/unowned", cfg.TaskOwner(), cfg.GCSSubfolder())
	}
	if _, ok := cfg.Timeout(); ok {
		t.Errorf("Timeout() ok = true, want no timeout by default")
	}
	if cfg.StartupTimeout() != 300*time.Second {
		t.Errorf("StartupTimeout() = %s, want 5m0s", cfg.StartupTimeout())
	}
	if cfg.NumSlices() != 1 {
		t.Errorf("NumSlices() = %d, want 1", cfg.NumSlices())
	}

	cfg = must(NewTpuGkeTest(v4x8, "maxtext", "tpu-cluster", image, nil, run,
		WithTimeout(90*time.Minute), WithTaskOwner("jdoe"), WithGCSSubfolder("maxtext"), WithStartupTimeout(time.Minute)))
	if d, ok := cfg.Timeout(); !ok || d != 90*time.Minute {
		t.Errorf("Timeout() = %s, %v; want 1h30m0s, true", d, ok)
	}
	if cfg.TaskOwner() != "jdoe" || cfg.GCSSubfolder() != "maxtext" {
		t.Errorf("owner/subfolder = %q/%q, want jdoe/maxtext", cfg.TaskOwner(), cfg.GCSSubfolder())
	}
	if cfg.StartupTimeout() != time.Minute {
		t.Errorf("StartupTimeout() = %s, want 1m0s", cfg.StartupTimeout())
	}
}

func TestConstructorsRejectInvalidArguments(t *testing.T) {
	badTpu := accelerator.Tpu{Version: accelerator.TpuV4, Cores: -1, Network: "default", Subnetwork: "default"}
	tests := []struct {
		name string
		err  func() error
	}{
		{"zero slices", func() error { _, err := NewTpuVmTest(v4x8, "t", nil, run, WithNumSlices(0)); return err }},
		{"negative hosts", func() error { _, err := NewGpuGkeTest(a100, "t", nil, run, image, WithNumHosts(-2)); return err }},
		{"empty test name", func() error { _, err := NewGpuVmTest(a100, "", nil, run); return err }},
		{"no run commands", func() error { _, err := NewTpuVmTest(v4x8, "t", setUp, nil); return err }},
		{"no test command", func() error { _, err := NewJSonnetTpuVmTest(v4x8, "t", "", "", nil); return err }},
		{"bad accelerator", func() error { _, err := NewTpuGkeTest(badTpu, "t", "c", image, nil, run); return err }},
		{"no cluster", func() error { _, err := NewCpuGkeTest(n2, "t", "", image, nil, run); return err }},
		{"bad image", func() error { _, err := NewGpuXpkTest(a100, "t", "c", "Not A/Valid:Image:Ref", nil, run); return err }},
		{"empty image", func() error { _, err := NewGpuGkeTest(a100, "t", nil, run, ""); return err }},
		{"negative timeout", func() error { _, err := NewGpuVmTest(a100, "t", nil, run, WithTimeout(-time.Second)); return err }},
		{"slices on gpu vm", func() error { _, err := NewGpuVmTest(a100, "t", nil, run, WithNumSlices(2)); return err }},
		{"hosts on tpu vm", func() error { _, err := NewTpuVmTest(v4x8, "t", nil, run, WithNumHosts(2)); return err }},
		{"startup timeout on vm", func() error { _, err := NewTpuVmTest(v4x8, "t", nil, run, WithStartupTimeout(time.Second)); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.err(); !errors.Is(err, configerr.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	cfg := must(NewJSonnetTpuVmTest(v4x8, "jax-test", "echo hi", "", []string{"bash", "-c", "echo test"},
		WithTimeout(time.Hour), WithTaskOwner("jdoe")))

	want := Summary{
		Kind:         KindJSonnetTpuVm,
		BenchmarkID:  "jax-test-v4-8",
		Accelerator:  "v4-8",
		TaskOwner:    "jdoe",
		GCSSubfolder: "unowned",
		Timeout:      "1h0m0s",
		SetupScript:  "set -xue\necho hi",
		TestScript:   "set -xue\n\nbash -c 'echo test'",
	}
	if diff := cmp.Diff(want, Describe(cfg)); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
}
