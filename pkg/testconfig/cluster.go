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
	"time"

	"xlml/pkg/accelerator"
	"xlml/pkg/shell"
)

// clusterJob holds the fields shared by tests that run in a pod on a GKE
// cluster, either directly or through xpk.
type clusterJob struct {
	testName       string
	clusterName    string
	dockerImage    string
	setUpCmds      []string
	runModelCmds   []string
	startupTimeout time.Duration
	numSlices      int
}

func newClusterJob(testName, clusterName, dockerImage string, setUpCmds, runModelCmds []string, o options) (clusterJob, error) {
	if err := validateTestName(testName); err != nil {
		return clusterJob{}, err
	}
	if err := validateCluster(testName, clusterName, dockerImage); err != nil {
		return clusterJob{}, err
	}
	if err := validateCommands(testName, "run model commands", runModelCmds); err != nil {
		return clusterJob{}, err
	}
	return clusterJob{
		testName:       testName,
		clusterName:    clusterName,
		dockerImage:    dockerImage,
		setUpCmds:      clone(setUpCmds),
		runModelCmds:   clone(runModelCmds),
		startupTimeout: o.startupTimeout,
		numSlices:      o.numSlices,
	}, nil
}

func (j clusterJob) TestName() string              { return j.testName }
func (j clusterJob) ClusterName() string           { return j.clusterName }
func (j clusterJob) DockerImage() string           { return j.dockerImage }
func (j clusterJob) SetUpCmds() []string           { return clone(j.setUpCmds) }
func (j clusterJob) RunModelCmds() []string        { return clone(j.runModelCmds) }
func (j clusterJob) StartupTimeout() time.Duration { return j.startupTimeout }
func (j clusterJob) NumSlices() int                { return j.numSlices }

const clusterOptions = takesNumSlices | takesStartupTimeout

// CpuGkeTest runs on Cloud CPU machines in a GKE cluster.
type CpuGkeTest struct {
	common
	clusterJob
	accelerator accelerator.Cpu
}

// NewCpuGkeTest returns a CPU test that runs in dockerImage on clusterName.
// Accepts WithNumSlices and WithStartupTimeout.
func NewCpuGkeTest(acc accelerator.Cpu, testName, clusterName, dockerImage string, setUpCmds, runModelCmds []string, opts ...Option) (CpuGkeTest, error) {
	o, err := buildOptions(KindCpuGke, clusterOptions, Unowned, opts)
	if err != nil {
		return CpuGkeTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return CpuGkeTest{}, err
	}
	job, err := newClusterJob(testName, clusterName, dockerImage, setUpCmds, runModelCmds, o)
	if err != nil {
		return CpuGkeTest{}, err
	}
	return CpuGkeTest{common: o.common(), clusterJob: job, accelerator: acc}, nil
}

func (t CpuGkeTest) Kind() Kind                   { return KindCpuGke }
func (t CpuGkeTest) Accelerator() accelerator.Cpu { return t.accelerator }
func (t CpuGkeTest) AcceleratorName() string      { return t.accelerator.Name() }

// BenchmarkID does not include the slice count.
func (t CpuGkeTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, 1)
}

func (t CpuGkeTest) SetupScript() (string, bool) {
	return shell.StrictScript(shell.SemicolonSeparator, t.setUpCmds...), true
}

func (t CpuGkeTest) TestScript() string {
	return shell.StrictScript(shell.SemicolonSeparator, t.runModelCmds...)
}

// TpuGkeTest runs on Cloud TPU slices in a GKE cluster.
type TpuGkeTest struct {
	common
	clusterJob
	accelerator accelerator.Tpu
}

// NewTpuGkeTest returns a TPU test that runs in dockerImage on clusterName.
// Accepts WithNumSlices and WithStartupTimeout.
func NewTpuGkeTest(acc accelerator.Tpu, testName, clusterName, dockerImage string, setUpCmds, runModelCmds []string, opts ...Option) (TpuGkeTest, error) {
	o, err := buildOptions(KindTpuGke, clusterOptions, Unowned, opts)
	if err != nil {
		return TpuGkeTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return TpuGkeTest{}, err
	}
	job, err := newClusterJob(testName, clusterName, dockerImage, setUpCmds, runModelCmds, o)
	if err != nil {
		return TpuGkeTest{}, err
	}
	return TpuGkeTest{common: o.common(), clusterJob: job, accelerator: acc}, nil
}

func (t TpuGkeTest) Kind() Kind                   { return KindTpuGke }
func (t TpuGkeTest) Accelerator() accelerator.Tpu { return t.accelerator }
func (t TpuGkeTest) AcceleratorName() string      { return t.accelerator.Name() }

func (t TpuGkeTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, t.numSlices)
}

func (t TpuGkeTest) SetupScript() (string, bool) {
	return shell.StrictScript(shell.SemicolonSeparator, t.setUpCmds...), true
}

func (t TpuGkeTest) TestScript() string {
	return shell.StrictScript(shell.SemicolonSeparator, t.runModelCmds...)
}

// GpuXpkTest runs on Cloud GPUs in a GKE cluster through xpk. xpk wraps the
// scripts in its own shell, so they carry no strict-mode preamble.
type GpuXpkTest struct {
	common
	clusterJob
	accelerator accelerator.Gpu
}

// NewGpuXpkTest returns a GPU test submitted through xpk.
// Accepts WithNumSlices and WithStartupTimeout.
func NewGpuXpkTest(acc accelerator.Gpu, testName, clusterName, dockerImage string, setUpCmds, runModelCmds []string, opts ...Option) (GpuXpkTest, error) {
	o, err := buildOptions(KindGpuXpk, clusterOptions, Unowned, opts)
	if err != nil {
		return GpuXpkTest{}, err
	}
	if err := acc.Validate(); err != nil {
		return GpuXpkTest{}, err
	}
	job, err := newClusterJob(testName, clusterName, dockerImage, setUpCmds, runModelCmds, o)
	if err != nil {
		return GpuXpkTest{}, err
	}
	return GpuXpkTest{common: o.common(), clusterJob: job, accelerator: acc}, nil
}

func (t GpuXpkTest) Kind() Kind                   { return KindGpuXpk }
func (t GpuXpkTest) Accelerator() accelerator.Gpu { return t.accelerator }
func (t GpuXpkTest) AcceleratorName() string      { return t.accelerator.Name() }

// BenchmarkID does not include the slice count.
func (t GpuXpkTest) BenchmarkID() string {
	return benchmarkID(t.testName, t.accelerator, 1)
}

// SetupScript reports no setup phase when there are no setup commands.
func (t GpuXpkTest) SetupScript() (string, bool) {
	script := shell.Script(shell.SemicolonSeparator, t.setUpCmds...)
	return script, script != ""
}

func (t GpuXpkTest) TestScript() string {
	return shell.Script(shell.SemicolonSeparator, t.runModelCmds...)
}
