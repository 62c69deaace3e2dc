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
	"xlml/pkg/configerr"
	"xlml/pkg/shell"
)

// GpuGkeTestSubfolder is the default GCS subfolder of GpuGkeTest.
const GpuGkeTestSubfolder = "/tmp/"

// JSonnetTpuVmTest is a TPU VM test converted from a compiled legacy JSonnet
// config. Use the legacy package to build one from a config file.
type JSonnetTpuVmTest struct {
	common
	accelerator accelerator.Tpu
	testName    string
	setup       string
	exports     string
	testCommand []string
	numSlices   int
}

// NewJSonnetTpuVmTest returns a legacy TPU VM test. setup is a multi-line
// script that configures the TPU, exports are extra statements run in the same
// shell as testCommand, and testCommand is a program and its arguments.
// Accepts WithNumSlices.
func NewJSonnetTpuVmTest(acc accelerator.Tpu, testName, setup, exports string, testCommand []string, opts ...Option) (JSonnetTpuVmTest, error) {
	o, err := buildOptions(KindJSonnetTpuVm, takesNumSlices, Unowned, opts)
	if err != nil {
		return JSonnetTpuVmTest{}, err
	}
	if err := validateTestName(testName); err != nil {
		return JSonnetTpuVmTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return JSonnetTpuVmTest{}, err
	}
	if err := validateCommands(testName, "test command", testCommand); err != nil {
		return JSonnetTpuVmTest{}, err
	}
	return JSonnetTpuVmTest{
		common:      o.common(),
		accelerator: acc,
		testName:    testName,
		setup:       setup,
		exports:     exports,
		testCommand: clone(testCommand),
		numSlices:   o.numSlices,
	}, nil
}

func (t JSonnetTpuVmTest) Kind() Kind                   { return KindJSonnetTpuVm }
func (t JSonnetTpuVmTest) Accelerator() accelerator.Tpu { return t.accelerator }
func (t JSonnetTpuVmTest) AcceleratorName() string      { return t.accelerator.Name() }
func (t JSonnetTpuVmTest) TestName() string             { return t.testName }
func (t JSonnetTpuVmTest) Setup() string                { return t.setup }
func (t JSonnetTpuVmTest) Exports() string              { return t.exports }
func (t JSonnetTpuVmTest) TestCommand() []string        { return clone(t.testCommand) }
func (t JSonnetTpuVmTest) NumSlices() int               { return t.numSlices }

func (t JSonnetTpuVmTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, t.numSlices)
}

func (t JSonnetTpuVmTest) SetupScript() (string, bool) {
	return shell.StrictScript(shell.NewlineSeparator, t.setup), true
}

// TestScript runs the exports and then the quoted test command in one shell.
func (t JSonnetTpuVmTest) TestScript() string {
	return shell.StrictScript(shell.NewlineSeparator, t.exports, shell.Join(t.testCommand))
}

// GpuGkeTest is a GPU test converted from a compiled legacy JSonnet config that
// runs in a pod on a GKE cluster.
type GpuGkeTest struct {
	common
	accelerator accelerator.Gpu
	testName    string
	entrypoint  []string
	testCommand []string
	dockerImage string
	numHosts    int
}

// NewGpuGkeTest returns a legacy GPU test. entrypoint configures the GPU
// instance and invokes testCommand; both are argument lists. The GCS subfolder
// defaults to GpuGkeTestSubfolder. Accepts WithNumHosts.
func NewGpuGkeTest(acc accelerator.Gpu, testName string, entrypoint, testCommand []string, dockerImage string, opts ...Option) (GpuGkeTest, error) {
	o, err := buildOptions(KindGpuGke, takesNumHosts, GpuGkeTestSubfolder, opts)
	if err != nil {
		return GpuGkeTest{}, err
	}
	if err := validateTestName(testName); err != nil {
		return GpuGkeTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return GpuGkeTest{}, err
	}
	if err := validateCommands(testName, "test command", testCommand); err != nil {
		return GpuGkeTest{}, err
	}
	if dockerImage == "" {
		return GpuGkeTest{}, configerr.InvalidArgument("%s: docker image must not be empty", testName)
	}
	if err := validateDockerImage(testName, dockerImage); err != nil {
		return GpuGkeTest{}, err
	}
	return GpuGkeTest{
		common:      o.common(),
		accelerator: acc,
		testName:    testName,
		entrypoint:  clone(entrypoint),
		testCommand: clone(testCommand),
		dockerImage: dockerImage,
		numHosts:    o.numHosts,
	}, nil
}

func (t GpuGkeTest) Kind() Kind                   { return KindGpuGke }
func (t GpuGkeTest) Accelerator() accelerator.Gpu { return t.accelerator }
func (t GpuGkeTest) AcceleratorName() string      { return t.accelerator.Name() }
func (t GpuGkeTest) TestName() string             { return t.testName }
func (t GpuGkeTest) Entrypoint() []string         { return clone(t.entrypoint) }
func (t GpuGkeTest) TestCommand() []string        { return clone(t.testCommand) }
func (t GpuGkeTest) DockerImage() string          { return t.dockerImage }
func (t GpuGkeTest) NumHosts() int                { return t.numHosts }

// BenchmarkID does not include the host count.
func (t GpuGkeTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, 1)
}

// SetupScript quotes the entrypoint arguments. It reports no setup phase for an
// empty entrypoint.
func (t GpuGkeTest) SetupScript() (string, bool) {
	script := shell.Join(t.entrypoint)
	return script, script != ""
}

func (t GpuGkeTest) TestScript() string {
	return shell.Join(t.testCommand)
}
