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

// Package legacy converts compiled legacy JSonnet test configs into test
// configurations.
//
// Two config families exist: "jax" configs from tests/jax and "pytorch" configs
// from tests/pytorch, the latter for both TPU VMs and GPUs on GKE. The caller
// picks the family by calling the matching Adapter method; the format is never
// guessed from the document. Each call loads the document again.
package legacy

import (
	"fmt"
	"time"

	"xlml/pkg/accelerator"
	"xlml/pkg/configerr"
	"xlml/pkg/logging"
	"xlml/pkg/testconfig"
)

// Family names a legacy config family.
type Family string

const (
	FamilyJax        Family = "jax"
	FamilyPytorch    Family = "pytorch"
	FamilyPytorchGpu Family = "pytorch-gpu"
)

// Families lists the families in the order they are documented.
var Families = []Family{FamilyJax, FamilyPytorch, FamilyPytorchGpu}

// NotApplicable fills Gpu fields the legacy GPU schema does not carry.
const NotApplicable = "n/a"

// pytorchHomeDir is inserted between the PyTorch setup and the extra setup,
// which expects a fresh shell in the home directory.
const pytorchHomeDir = "\ncd ~\n"

var tpuFields = recipe{
	field(".testName", stringValue, func(r *record, v any) { r.testName = v.(string) }),
	field(".accelerator.version", versionValue, func(r *record, v any) { r.tpuVersion = v.(string) }),
	field(".accelerator.variant", stringValue, func(r *record, v any) { r.tpuVariant = v.(string) }),
	field(".accelerator.size", intValue, func(r *record, v any) { r.tpuCores = v.(int) }),
	field(".tpuSettings.softwareVersion", stringValue, func(r *record, v any) { r.softwareVersion = v.(string) }),
	field(".timeout", secondsValue, func(r *record, v any) { r.timeout = v.(time.Duration) }),
}

var jaxFields = concat(tpuFields, recipe{
	field(".setup", stringValue, func(r *record, v any) { r.setup = v.(string) }),
	field(".runTest", stringValue, func(r *record, v any) { r.runTest = v.(string) }),
})

var pytorchTpuFields = concat(tpuFields, recipe{
	field(".tpuSettings.tpuVmPytorchSetup", stringValue, func(r *record, v any) { r.pytorchSetup = v.(string) }),
	field(".tpuSettings.tpuVmExtraSetup", stringValue, func(r *record, v any) { r.extraSetup = v.(string) }),
	field(".tpuSettings.tpuVmExports", stringValue, func(r *record, v any) { r.exports = v.(string) }),
	field(".command", argvValue, func(r *record, v any) { r.command = v.([]string) }),
})

var pytorchGpuFields = recipe{
	field(".image", stringValue, func(r *record, v any) { r.image = v.(string) }),
	field(".imageTag", stringValue, func(r *record, v any) { r.imageTag = v.(string) }),
	field(".accelerator.count", intValue, func(r *record, v any) { r.gpuCount = v.(int) }),
	field(".accelerator.accelerator_type", stringValue, func(r *record, v any) { r.acceleratorType = v.(string) }),
	field(".accelerator.num_hosts", intValue, func(r *record, v any) { r.numHosts = v.(int) }),
	field(".entrypoint", argvValue, func(r *record, v any) { r.entrypoint = v.([]string) }),
	field(".command", argvValue, func(r *record, v any) { r.command = v.([]string) }),
	field(".timeout", secondsValue, func(r *record, v any) { r.timeout = v.(time.Duration) }),
}

// TpuOption overrides TPU placement settings the legacy schema does not carry.
type TpuOption func(*tpuPlacement)

type tpuPlacement struct {
	reserved   bool
	network    string
	subnetwork string
}

// WithReserved requests TPUs from a Cloud reservation.
func WithReserved(reserved bool) TpuOption {
	return func(p *tpuPlacement) { p.reserved = reserved }
}

// WithNetwork places the TPU on the given network and subnetwork.
func WithNetwork(network, subnetwork string) TpuOption {
	return func(p *tpuPlacement) {
		p.network = network
		p.subnetwork = subnetwork
	}
}

// Adapter builds test configurations from legacy documents.
type Adapter struct {
	loader Loader
}

// NewAdapter returns an Adapter reading documents through loader.
func NewAdapter(loader Loader) *Adapter {
	return &Adapter{loader: loader}
}

// JaxTpuVmTest converts a compiled config from tests/jax. Its setup script is
// the document's setup field and the test runs `bash -c <runTest>`.
func (a *Adapter) JaxTpuVmTest(name string, opts ...TpuOption) (testconfig.JSonnetTpuVmTest, error) {
	placement, err := newPlacement(opts)
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, err
	}
	r, err := a.resolve(name, jaxFields)
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, err
	}
	return newJSonnetTpuVmTest(name, r, placement, r.setup, "", []string{"bash", "-c", r.runTest})
}

// PytorchTpuVmTest converts a compiled TPU VM config from tests/pytorch.
func (a *Adapter) PytorchTpuVmTest(name string, opts ...TpuOption) (testconfig.JSonnetTpuVmTest, error) {
	placement, err := newPlacement(opts)
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, err
	}
	r, err := a.resolve(name, pytorchTpuFields)
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, err
	}
	setup := r.pytorchSetup + pytorchHomeDir + r.extraSetup
	return newJSonnetTpuVmTest(name, r, placement, setup, r.exports, r.command)
}

// PytorchGpuGkeTest converts a compiled GPU config from tests/pytorch. The
// test is named after the document rather than its testName field.
func (a *Adapter) PytorchGpuGkeTest(name string) (testconfig.GpuGkeTest, error) {
	r, err := a.resolve(name, pytorchGpuFields)
	if err != nil {
		return testconfig.GpuGkeTest{}, err
	}
	gpu := accelerator.Gpu{
		MachineType:     NotApplicable,
		ImageFamily:     NotApplicable,
		RuntimeVersion:  NotApplicable,
		Count:           r.gpuCount,
		AcceleratorType: r.acceleratorType,
	}
	cfg, err := testconfig.NewGpuGkeTest(
		gpu,
		name,
		r.entrypoint,
		r.command,
		fmt.Sprintf("%s:%s", r.image, r.imageTag),
		testconfig.WithNumHosts(r.numHosts),
		testconfig.WithTimeout(r.timeout),
	)
	if err != nil {
		return testconfig.GpuGkeTest{}, malformed(name, err)
	}
	return cfg, nil
}

// Resolve converts the named document of the given family into a Config.
func (a *Adapter) Resolve(family Family, name string, opts ...TpuOption) (testconfig.Config, error) {
	switch family {
	case FamilyJax:
		return a.JaxTpuVmTest(name, opts...)
	case FamilyPytorch:
		return a.PytorchTpuVmTest(name, opts...)
	case FamilyPytorchGpu:
		if len(opts) > 0 {
			return nil, configerr.InvalidArgument("family %s does not take TPU options", family)
		}
		return a.PytorchGpuGkeTest(name)
	}
	names := make([]string, len(Families))
	for i, f := range Families {
		names[i] = string(f)
	}
	return nil, configerr.InvalidArgument("unknown legacy config family %q%s", family, configerr.Hint(string(family), names))
}

func (a *Adapter) resolve(name string, fields recipe) (record, error) {
	doc, err := a.loader.Load(name)
	if err != nil {
		return record{}, err
	}
	r, err := fields.apply(name, doc)
	if err != nil {
		return record{}, err
	}
	logging.Debug("Resolved legacy config %q", name)
	return r, nil
}

func newPlacement(opts []TpuOption) (tpuPlacement, error) {
	p := tpuPlacement{network: accelerator.DefaultNetwork, subnetwork: accelerator.DefaultNetwork}
	for _, opt := range opts {
		opt(&p)
	}
	if p.network == "" || p.subnetwork == "" {
		return p, configerr.InvalidArgument("TPU network and subnetwork must not be empty")
	}
	return p, nil
}

func newJSonnetTpuVmTest(name string, r record, p tpuPlacement, setup, exports string, command []string) (testconfig.JSonnetTpuVmTest, error) {
	version, err := accelerator.ParseTpuVersion(r.tpuVersion + r.tpuVariant)
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, malformed(name, err)
	}
	tpu := accelerator.Tpu{
		Version:        version,
		Cores:          r.tpuCores,
		RuntimeVersion: r.softwareVersion,
		Network:        p.network,
		Subnetwork:     p.subnetwork,
		Reserved:       p.reserved,
	}
	cfg, err := testconfig.NewJSonnetTpuVmTest(tpu, r.testName, setup, exports, command, testconfig.WithTimeout(r.timeout))
	if err != nil {
		return testconfig.JSonnetTpuVmTest{}, malformed(name, err)
	}
	return cfg, nil
}

// malformed reports a document value rejected by validation. The result
// matches both configerr.ErrMalformed and the cause.
func malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", configerr.ErrMalformed, name, err)
}
