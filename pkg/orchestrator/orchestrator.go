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

package orchestrator

import (
	"time"

	"xlml/pkg/accelerator"
	"xlml/pkg/configerr"
	"xlml/pkg/testconfig"
)

// Node selector labels GKE puts on accelerator node pools.
const (
	GPUAcceleratorLabel = "cloud.google.com/gke-accelerator"
	TPUAcceleratorLabel = "cloud.google.com/gke-tpu-accelerator"
	MachineTypeLabel    = "node.kubernetes.io/instance-type"
)

// Extended resource names requested by accelerator workloads.
const (
	GPUResource = "nvidia.com/gpu"
	TPUResource = "google.com/tpu"
)

// JobDefinition holds all the necessary parameters to define a job.
// This struct is intended to be general enough to support various orchestrators,
// with specific orchestrator implementations extracting the fields relevant to them.
type JobDefinition struct {
	Kind        testconfig.Kind
	BenchmarkID string
	ClusterName string
	DockerImage string
	SetupScript string
	TestScript  string

	// NodeSelector pins pods to the accelerator node pool.
	NodeSelector map[string]string
	// AcceleratorResource and AcceleratorsPerVm form the per-pod accelerator
	// limit. An empty resource requests CPU only.
	AcceleratorResource string
	AcceleratorsPerVm   int

	Timeout        time.Duration // zero means no deadline
	StartupTimeout time.Duration
	OutputManifest string

	// JobSet and Kueue related options
	WorkloadName            string
	KueueQueueName          string
	NumSlices               int
	VmsPerSlice             int
	MaxRestarts             int
	TtlSecondsAfterFinished int
}

// Orchestrator defines the interface for submitting and managing jobs on a cluster.
type Orchestrator interface {
	// SubmitJob takes a JobDefinition and orchestrates its deployment.
	SubmitJob(job JobDefinition) error
}

// tpuChipsPerVm is the chip count of one multi-host TPU VM.
const tpuChipsPerVm = 4

// gkeTpu describes how a TPU generation is exposed on GKE.
type gkeTpu struct {
	label        string
	coresPerChip int
}

var gkeTpus = map[accelerator.TpuVersion]gkeTpu{
	accelerator.TpuV4:       {label: "tpu-v4-podslice", coresPerChip: 2},
	accelerator.TpuV5e:      {label: "tpu-v5-lite-podslice", coresPerChip: 1},
	accelerator.TpuV5p:      {label: "tpu-v5p-slice", coresPerChip: 2},
	accelerator.TpuTrillium: {label: "tpu-v6e-slice", coresPerChip: 1},
}

// FromTestConfig derives the cluster job of a GKE or XPK test configuration.
// VM-based configurations have no cluster job and are rejected with
// configerr.ErrInvalidArgument.
func FromTestConfig(cfg testconfig.Config) (JobDefinition, error) {
	job := JobDefinition{
		Kind:        cfg.Kind(),
		BenchmarkID: cfg.BenchmarkID(),
		TestScript:  cfg.TestScript(),
		NumSlices:   1,
		VmsPerSlice: 1,
	}
	if script, ok := cfg.SetupScript(); ok {
		job.SetupScript = script
	}
	if d, ok := cfg.Timeout(); ok {
		job.Timeout = d
	}

	switch t := cfg.(type) {
	case testconfig.CpuGkeTest:
		acc := t.Accelerator()
		job.ClusterName = t.ClusterName()
		job.DockerImage = t.DockerImage()
		job.StartupTimeout = t.StartupTimeout()
		job.NumSlices = t.NumSlices()
		job.VmsPerSlice = acc.MachineCount
		job.NodeSelector = map[string]string{MachineTypeLabel: string(acc.DeviceType)}
	case testconfig.TpuGkeTest:
		acc := t.Accelerator()
		tpu, ok := gkeTpus[acc.Version]
		if !ok {
			return JobDefinition{}, configerr.InvalidArgument("%s: TPU %s is not available on GKE", t.TestName(), acc.Name())
		}
		if acc.Cores < tpu.coresPerChip || acc.Cores%tpu.coresPerChip != 0 {
			return JobDefinition{}, configerr.InvalidArgument("%s: TPU %s does not fill whole chips of %d cores", t.TestName(), acc.Name(), tpu.coresPerChip)
		}
		chips := acc.Cores / tpu.coresPerChip
		job.ClusterName = t.ClusterName()
		job.DockerImage = t.DockerImage()
		job.StartupTimeout = t.StartupTimeout()
		job.NumSlices = t.NumSlices()
		job.NodeSelector = map[string]string{TPUAcceleratorLabel: tpu.label}
		job.AcceleratorResource = TPUResource
		job.AcceleratorsPerVm = min(chips, tpuChipsPerVm)
		job.VmsPerSlice = (chips + tpuChipsPerVm - 1) / tpuChipsPerVm
	case testconfig.GpuXpkTest:
		acc := t.Accelerator()
		job.ClusterName = t.ClusterName()
		job.DockerImage = t.DockerImage()
		job.StartupTimeout = t.StartupTimeout()
		job.NumSlices = t.NumSlices()
		job.NodeSelector = map[string]string{GPUAcceleratorLabel: acc.AcceleratorType}
		job.AcceleratorResource = GPUResource
		job.AcceleratorsPerVm = acc.Count
	case testconfig.GpuGkeTest:
		acc := t.Accelerator()
		job.DockerImage = t.DockerImage()
		job.VmsPerSlice = t.NumHosts()
		job.NodeSelector = map[string]string{GPUAcceleratorLabel: acc.AcceleratorType}
		job.AcceleratorResource = GPUResource
		job.AcceleratorsPerVm = acc.Count
	default:
		return JobDefinition{}, configerr.InvalidArgument("%s %q runs on a VM and has no cluster job", cfg.Kind(), cfg.BenchmarkID())
	}
	return job, nil
}
