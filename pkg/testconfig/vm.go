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
	"xlml/pkg/accelerator"
	"xlml/pkg/shell"
)

// TpuVmTest runs directly on one or more Cloud TPU VMs.
type TpuVmTest struct {
	common
	accelerator  accelerator.Tpu
	testName     string
	setUpCmds    []string
	runModelCmds []string
	numSlices    int
}

// NewTpuVmTest returns a TPU VM test. setUpCmds run once when the TPU is
// created; runModelCmds run the model under test. Accepts WithNumSlices.
func NewTpuVmTest(acc accelerator.Tpu, testName string, setUpCmds, runModelCmds []string, opts ...Option) (TpuVmTest, error) {
	o, err := buildOptions(KindTpuVm, takesNumSlices, Unowned, opts)
	if err != nil {
		return TpuVmTest{}, err
	}
	if err := validateTestName(testName); err != nil {
		return TpuVmTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return TpuVmTest{}, err
	}
	if err := validateCommands(testName, "run model commands", runModelCmds); err != nil {
		return TpuVmTest{}, err
	}
	return TpuVmTest{
		common:       o.common(),
		accelerator:  acc,
		testName:     testName,
		setUpCmds:    clone(setUpCmds),
		runModelCmds: clone(runModelCmds),
		numSlices:    o.numSlices,
	}, nil
}

func (t TpuVmTest) Kind() Kind                   { return KindTpuVm }
func (t TpuVmTest) Accelerator() accelerator.Tpu { return t.accelerator }
func (t TpuVmTest) AcceleratorName() string      { return t.accelerator.Name() }
func (t TpuVmTest) TestName() string             { return t.testName }
func (t TpuVmTest) SetUpCmds() []string          { return clone(t.setUpCmds) }
func (t TpuVmTest) RunModelCmds() []string       { return clone(t.runModelCmds) }
func (t TpuVmTest) NumSlices() int               { return t.numSlices }

func (t TpuVmTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, t.numSlices)
}

func (t TpuVmTest) SetupScript() (string, bool) {
	return shell.StrictScript(shell.NewlineSeparator, t.setUpCmds...), true
}

func (t TpuVmTest) TestScript() string {
	return shell.StrictScript(shell.NewlineSeparator, t.runModelCmds...)
}

// GpuVmTest runs directly on a single Cloud GPU VM.
type GpuVmTest struct {
	common
	accelerator  accelerator.Gpu
	testName     string
	setUpCmds    []string
	runModelCmds []string
}

// NewGpuVmTest returns a GPU VM test.
func NewGpuVmTest(acc accelerator.Gpu, testName string, setUpCmds, runModelCmds []string, opts ...Option) (GpuVmTest, error) {
	o, err := buildOptions(KindGpuVm, 0, Unowned, opts)
	if err != nil {
		return GpuVmTest{}, err
	}
	if err := validateTestName(testName); err != nil {
		return GpuVmTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return GpuVmTest{}, err
	}
	if err := validateCommands(testName, "run model commands", runModelCmds); err != nil {
		return GpuVmTest{}, err
	}
	return GpuVmTest{
		common:       o.common(),
		accelerator:  acc,
		testName:     testName,
		setUpCmds:    clone(setUpCmds),
		runModelCmds: clone(runModelCmds),
	}, nil
}

func (t GpuVmTest) Kind() Kind                   { return KindGpuVm }
func (t GpuVmTest) Accelerator() accelerator.Gpu { return t.accelerator }
func (t GpuVmTest) AcceleratorName() string      { return t.accelerator.Name() }
func (t GpuVmTest) TestName() string             { return t.testName }
func (t GpuVmTest) SetUpCmds() []string          { return clone(t.setUpCmds) }
func (t GpuVmTest) RunModelCmds() []string       { return clone(t.runModelCmds) }

func (t GpuVmTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, 1)
}

func (t GpuVmTest) SetupScript() (string, bool) {
	return shell.StrictScript(shell.NewlineSeparator, t.setUpCmds...), true
}

func (t GpuVmTest) TestScript() string {
	return shell.StrictScript(shell.NewlineSeparator, t.runModelCmds...)
}
