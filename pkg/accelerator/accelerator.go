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

// Package accelerator describes the hardware a test job requires.
//
// Accelerators are plain values. A test configuration holds its own copy, so
// nothing observes a change made to a value after it was handed over.
package accelerator

import (
	"fmt"

	"xlml/pkg/configerr"
)

// DefaultNetwork is the VPC network and subnetwork used when none is given.
const DefaultNetwork = "default"

// Accelerator is implemented by Tpu, Gpu and Cpu.
type Accelerator interface {
	// Name is the canonical hardware identifier used in reporting and cloud APIs.
	Name() string
	// Validate reports configerr.ErrInvalidArgument for out-of-range fields.
	Validate() error
}

// Tpu represents a single Cloud TPU instance.
type Tpu struct {
	Version TpuVersion
	// Cores is the number of cores in the TPU type, i.e. the number in the name.
	Cores          int
	RuntimeVersion string // empty when unset
	Network        string
	Subnetwork     string
	// Reserved requests capacity from a Cloud reservation.
	Reserved    bool
	Preemptible bool
}

// NewTpu returns a validated Tpu on the default network.
func NewTpu(version TpuVersion, cores int, runtimeVersion string) (Tpu, error) {
	t := Tpu{
		Version:        version,
		Cores:          cores,
		RuntimeVersion: runtimeVersion,
		Network:        DefaultNetwork,
		Subnetwork:     DefaultNetwork,
	}
	return t, t.Validate()
}

// Name returns the TPU type in the Cloud TPU API, e.g. "v4-8".
func (t Tpu) Name() string {
	return fmt.Sprintf("v%s-%d", t.Version, t.Cores)
}

func (t Tpu) Validate() error {
	if !t.Version.Valid() {
		_, err := ParseTpuVersion(string(t.Version))
		return err
	}
	if t.Cores <= 0 {
		return configerr.InvalidArgument("TPU cores must be positive, got %d", t.Cores)
	}
	if t.Network == "" || t.Subnetwork == "" {
		return configerr.InvalidArgument("TPU %s needs a network and subnetwork", t.Name())
	}
	return nil
}

// Gpu represents a single Cloud GPU instance.
type Gpu struct {
	MachineType string // e.g. a2-highgpu-1g
	ImageFamily string
	Count       int
	// AcceleratorType is the GPU type, e.g. nvidia-tesla-v100.
	AcceleratorType string
	RuntimeVersion  string
	Network         string
	Subnetwork      string
}

// NewGpu returns a validated Gpu without network settings.
func NewGpu(machineType, imageFamily string, count int, acceleratorType string) (Gpu, error) {
	g := Gpu{
		MachineType:     machineType,
		ImageFamily:     imageFamily,
		Count:           count,
		AcceleratorType: acceleratorType,
	}
	return g, g.Validate()
}

// Name returns the GPU accelerator type.
func (g Gpu) Name() string {
	return g.AcceleratorType
}

func (g Gpu) Validate() error {
	switch {
	case g.AcceleratorType == "":
		return configerr.InvalidArgument("GPU accelerator type must be set")
	case g.MachineType == "":
		return configerr.InvalidArgument("GPU %s needs a machine type", g.AcceleratorType)
	case g.ImageFamily == "":
		return configerr.InvalidArgument("GPU %s needs an image family", g.AcceleratorType)
	case g.Count <= 0:
		return configerr.InvalidArgument("GPU count must be positive, got %d", g.Count)
	}
	return nil
}

// Cpu represents one or more Cloud CPU machines.
type Cpu struct {
	DeviceType   CpuVersion
	MachineCount int
}

// NewCpu returns a validated Cpu.
func NewCpu(deviceType CpuVersion, machineCount int) (Cpu, error) {
	c := Cpu{DeviceType: deviceType, MachineCount: machineCount}
	return c, c.Validate()
}

// Name returns the CPU type, e.g. "n2-standard-64-1".
func (c Cpu) Name() string {
	return fmt.Sprintf("%s-%d", c.DeviceType, c.MachineCount)
}

func (c Cpu) Validate() error {
	if !c.DeviceType.Valid() {
		_, err := ParseCpuVersion(string(c.DeviceType))
		return err
	}
	if c.MachineCount <= 0 {
		return configerr.InvalidArgument("CPU machine count must be positive, got %d", c.MachineCount)
	}
	return nil
}
