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

// Package testconfig models end-to-end accelerator test jobs.
//
// Every variant is constructed once through its New function, which validates
// all fields, and is read-only afterwards. A scheduler consumes a variant through
// the Config interface: it provisions the accelerator, runs SetupScript once when
// one is present, and treats the exit code of TestScript as the test result.
package testconfig

import (
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"xlml/pkg/accelerator"
	"xlml/pkg/configerr"
)

// Kind identifies a test configuration variant.
type Kind string

const (
	KindTpuVm        Kind = "TpuVmTest"
	KindGpuVm        Kind = "GpuVmTest"
	KindCpuGke       Kind = "CpuGkeTest"
	KindTpuGke       Kind = "TpuGkeTest"
	KindGpuXpk       Kind = "GpuXpkTest"
	KindJSonnetTpuVm Kind = "JSonnetTpuVmTest"
	KindGpuGke       Kind = "GpuGkeTest"
)

const (
	// Unowned is the default task owner and GCS subfolder.
	Unowned = "unowned"
	// DefaultStartupTimeout bounds how long a cluster pod may take to start.
	DefaultStartupTimeout = 300 * time.Second
)

// Config is implemented by every test configuration variant in this package.
type Config interface {
	Kind() Kind
	// AcceleratorName is the canonical name of the bound accelerator.
	AcceleratorName() string
	// BenchmarkID is the unique key for metrics generated by this test.
	BenchmarkID() string
	// SetupScript is run once when the accelerator is created. ok is false when
	// there is no setup phase.
	SetupScript() (script string, ok bool)
	// TestScript runs on the accelerator; its exit code is the test result.
	TestScript() string
	// Timeout is the test timeout; ok is false when none was set.
	Timeout() (d time.Duration, ok bool)
	TaskOwner() string
	// GCSSubfolder is the subfolder of the default GCS bucket used for artifacts.
	GCSSubfolder() string

	sealed()
}

// TestConfig is a Config bound to a specific accelerator variant.
type TestConfig[A accelerator.Accelerator] interface {
	Config
	Accelerator() A
}

var (
	_ TestConfig[accelerator.Tpu] = TpuVmTest{}
	_ TestConfig[accelerator.Gpu] = GpuVmTest{}
	_ TestConfig[accelerator.Cpu] = CpuGkeTest{}
	_ TestConfig[accelerator.Tpu] = TpuGkeTest{}
	_ TestConfig[accelerator.Gpu] = GpuXpkTest{}
	_ TestConfig[accelerator.Tpu] = JSonnetTpuVmTest{}
	_ TestConfig[accelerator.Gpu] = GpuGkeTest{}
)

// common holds the fields shared by all variants.
type common struct {
	timeout      time.Duration
	hasTimeout   bool
	taskOwner    string
	gcsSubfolder string
}

func (c common) Timeout() (time.Duration, bool) { return c.timeout, c.hasTimeout }
func (c common) TaskOwner() string              { return c.taskOwner }
func (c common) GCSSubfolder() string           { return c.gcsSubfolder }
func (common) sealed()                          {}

// Option sets an optional field on a test configuration.
type Option func(*options)

// option capabilities, checked per variant
const (
	takesNumSlices = 1 << iota
	takesNumHosts
	takesStartupTimeout
)

type options struct {
	timeout    time.Duration
	hasTimeout bool

	taskOwner    string
	gcsSubfolder string

	numSlices      int
	numHosts       int
	startupTimeout time.Duration

	set int
}

// WithTimeout sets the test timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
		o.hasTimeout = true
	}
}

// WithTaskOwner sets the task owner username or link.
func WithTaskOwner(owner string) Option {
	return func(o *options) { o.taskOwner = owner }
}

// WithGCSSubfolder sets the subfolder name in the default GCS bucket.
func WithGCSSubfolder(subfolder string) Option {
	return func(o *options) { o.gcsSubfolder = subfolder }
}

// WithNumSlices sets the number of slices. Defaults to 1.
func WithNumSlices(n int) Option {
	return func(o *options) {
		o.numSlices = n
		o.set |= takesNumSlices
	}
}

// WithNumHosts sets the number of GPU hosts. Defaults to 1.
func WithNumHosts(n int) Option {
	return func(o *options) {
		o.numHosts = n
		o.set |= takesNumHosts
	}
}

// WithStartupTimeout bounds how long a cluster pod may take to start.
func WithStartupTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startupTimeout = d
		o.set |= takesStartupTimeout
	}
}

// buildOptions applies opts over the defaults and rejects options the variant does not take.
func buildOptions(kind Kind, takes int, gcsSubfolder string, opts []Option) (options, error) {
	o := options{
		taskOwner:      Unowned,
		gcsSubfolder:   gcsSubfolder,
		numSlices:      1,
		numHosts:       1,
		startupTimeout: DefaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	for _, c := range []struct {
		flag int
		what string
	}{
		{takesNumSlices, "num slices"},
		{takesNumHosts, "num hosts"},
		{takesStartupTimeout, "a startup timeout"},
	} {
		if o.set&c.flag != 0 && takes&c.flag == 0 {
			return o, configerr.InvalidArgument("%s does not take %s", kind, c.what)
		}
	}

	switch {
	case o.hasTimeout && o.timeout < 0:
		return o, configerr.InvalidArgument("timeout must not be negative, got %s", o.timeout)
	case o.numSlices < 1:
		return o, configerr.InvalidArgument("num slices must be at least 1, got %d", o.numSlices)
	case o.numHosts < 1:
		return o, configerr.InvalidArgument("num hosts must be at least 1, got %d", o.numHosts)
	case o.startupTimeout < 0:
		return o, configerr.InvalidArgument("startup timeout must not be negative, got %s", o.startupTimeout)
	}
	return o, nil
}

func (o options) common() common {
	return common{
		timeout:      o.timeout,
		hasTimeout:   o.hasTimeout,
		taskOwner:    o.taskOwner,
		gcsSubfolder: o.gcsSubfolder,
	}
}

func validateTestName(testName string) error {
	if testName == "" {
		return configerr.InvalidArgument("test name must not be empty")
	}
	return nil
}

func validateCommands(testName, what string, cmds []string) error {
	if len(cmds) == 0 {
		return configerr.InvalidArgument("%s: %s must not be empty", testName, what)
	}
	return nil
}

func validateCluster(testName, clusterName, dockerImage string) error {
	if clusterName == "" {
		return configerr.InvalidArgument("%s: cluster name must not be empty", testName)
	}
	return validateDockerImage(testName, dockerImage)
}

func validateDockerImage(testName, dockerImage string) error {
	if _, err := name.ParseReference(dockerImage); err != nil {
		return configerr.InvalidArgument("%s: docker image %q: %v", testName, dockerImage, err)
	}
	return nil
}

// benchmarkID combines the test name and accelerator name, prefixing the
// accelerator with the slice count when there is more than one slice.
func benchmarkID(testName string, acc accelerator.Accelerator, numSlices int) string {
	if numSlices == 1 {
		return fmt.Sprintf("%s-%s", testName, acc.Name())
	}
	return fmt.Sprintf("%s-%dx%s", testName, numSlices, acc.Name())
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
