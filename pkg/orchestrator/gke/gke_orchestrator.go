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

package gke

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/template"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/apimachinery/pkg/util/validation"

	"xlml/pkg/configerr"
	"xlml/pkg/logging"
	"xlml/pkg/orchestrator"
)

// JobSetTemplate is the Go template for generating a Kubernetes JobSet manifest.
const JobSetTemplate = `
apiVersion: jobset.x-k8s.io/v1alpha2
kind: JobSet
metadata:
  name: {{.WorkloadName}}
  labels:
    xlml.google.com/workload: {{.WorkloadName}}
    kueue.x-k8s.io/queue-name: {{json .KueueQueueName}} # Name of the LocalQueue
  annotations:
    xlml.google.com/benchmark-id: {{json .BenchmarkID}}
    xlml.google.com/test-kind: {{json .Kind}}
{{- if .ClusterName }}
    xlml.google.com/cluster: {{json .ClusterName}}
{{- end }}
{{- if .StartupTimeoutSeconds }}
    xlml.google.com/startup-timeout-seconds: "{{.StartupTimeoutSeconds}}"
{{- end }}
spec:
  ttlSecondsAfterFinished: {{.TtlSecondsAfterFinished}}
  failurePolicy:
    maxRestarts: {{.MaxRestarts}}
  replicatedJobs:
    - name: slice
      replicas: {{.NumSlices}}
      template:
        spec:
          parallelism: {{.VmsPerSlice}}    # Equal to the number of VMs per slice.
          completions: {{.VmsPerSlice}}    # Same as the above.
          backoffLimit: 0   # When any pod fails, the job is failed
{{- if .ActiveDeadlineSeconds }}
          activeDeadlineSeconds: {{.ActiveDeadlineSeconds}}
{{- end }}
          template:
            metadata:
              labels:
                xlml.google.com/workload: {{.WorkloadName}}
            spec:
              restartPolicy: {{.RestartPolicy}}
              containers:
              - name: workload-container
                image: {{json .Image}}
                command: ["/bin/bash", "-c", {{json .CommandToRun}}]
                resources:
                  limits:
{{- range .Limits }}
                    {{.Name}}: {{json .Quantity}}
{{- end }}
{{- if .NodeSelector }}
              nodeSelector:
{{- range $key, $value := .NodeSelector }}
                {{$key}}: {{json $value}}
{{- end }}
{{- end }}
`

// Defaults applied to unset JobDefinition fields.
const (
	DefaultKueueQueueName          = "default-queue"
	DefaultMaxRestarts             = 1
	DefaultTtlSecondsAfterFinished = 3600
)

// maxWorkloadPrefix leaves room for the random suffix within a DNS-1123 label.
const maxWorkloadPrefix = validation.DNS1123LabelMaxLength - 6

// podLimits are the CPU and memory limits per accelerator resource.
var podLimits = map[string]struct{ cpu, memory string }{
	orchestrator.GPUResource: {cpu: "8", memory: "64Gi"},
	orchestrator.TPUResource: {cpu: "16", memory: "128Gi"},
	"":                       {cpu: "0.5", memory: "512Mi"},
}

// GKEOrchestrator implements the Orchestrator interface for GKE. It renders
// JobSet manifests; applying them is left to the scheduler.
type GKEOrchestrator struct {
	fs  afero.Fs
	out io.Writer
}

var _ orchestrator.Orchestrator = (*GKEOrchestrator)(nil)

// NewGKEOrchestrator creates a GKEOrchestrator that writes manifests to files
// on fs, or to out when a job names no output file.
func NewGKEOrchestrator(fs afero.Fs, out io.Writer) (*GKEOrchestrator, error) {
	if fs == nil || out == nil {
		return nil, fmt.Errorf("GKE orchestrator needs a filesystem and an output writer")
	}
	return &GKEOrchestrator{fs: fs, out: out}, nil
}

// SubmitJob renders the JobSet manifest of job and writes it out.
func (g *GKEOrchestrator) SubmitJob(job orchestrator.JobDefinition) error {
	logging.Info("Generating GKE manifest for %s...", job.BenchmarkID)
	manifest, err := g.GenerateGKEManifest(job)
	if err != nil {
		return fmt.Errorf("failed to generate GKE manifest: %w", err)
	}

	if job.OutputManifest == "" || job.OutputManifest == "-" {
		if _, err := io.WriteString(g.out, manifest); err != nil {
			return fmt.Errorf("failed to write GKE manifest: %w", err)
		}
		return nil
	}
	logging.Info("Saving GKE manifest to %s", job.OutputManifest)
	if err := afero.WriteFile(g.fs, job.OutputManifest, []byte(manifest), 0644); err != nil {
		return fmt.Errorf("failed to write GKE manifest to file %s: %w", job.OutputManifest, err)
	}
	logging.Info("GKE manifest saved successfully.")
	return nil
}

type limit struct {
	Name     corev1.ResourceName
	Quantity string
}

// GenerateGKEManifest generates the Kubernetes JobSet manifest content
func (g *GKEOrchestrator) GenerateGKEManifest(job orchestrator.JobDefinition) (string, error) {
	if job.DockerImage == "" {
		return "", configerr.InvalidArgument("%s: a GKE job needs a docker image", job.BenchmarkID)
	}
	if job.TestScript == "" {
		return "", configerr.InvalidArgument("%s: a GKE job needs a test script", job.BenchmarkID)
	}

	workloadName := job.WorkloadName
	if workloadName == "" {
		workloadName = GenerateWorkloadName(job.BenchmarkID)
	}
	if errs := validation.IsDNS1123Label(workloadName); len(errs) > 0 {
		return "", configerr.InvalidArgument("invalid workload name %q: %s", workloadName, strings.Join(errs, "; "))
	}

	kueueQueueName := job.KueueQueueName
	if kueueQueueName == "" {
		kueueQueueName = DefaultKueueQueueName
	}

	numSlices := job.NumSlices
	if numSlices == 0 {
		numSlices = 1
	}

	vmsPerSlice := job.VmsPerSlice
	if vmsPerSlice == 0 {
		vmsPerSlice = 1
	}

	maxRestarts := job.MaxRestarts
	if maxRestarts == 0 {
		maxRestarts = DefaultMaxRestarts
	}

	ttlSecondsAfterFinished := job.TtlSecondsAfterFinished
	if ttlSecondsAfterFinished == 0 {
		ttlSecondsAfterFinished = DefaultTtlSecondsAfterFinished
	}

	if numSlices < 0 || vmsPerSlice < 0 || maxRestarts < 0 || ttlSecondsAfterFinished < 0 {
		return "", configerr.InvalidArgument("%s: job sizes must not be negative", job.BenchmarkID)
	}

	limits, err := resourceLimits(job)
	if err != nil {
		return "", err
	}

	commandToRun := job.TestScript
	if job.SetupScript != "" {
		commandToRun = job.SetupScript + "\n" + job.TestScript
	}

	tmpl, err := template.New("jobSet").Funcs(template.FuncMap{"json": jsonString}).Parse(JobSetTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse jobset template: %w", err)
	}

	data := struct {
		WorkloadName            string
		BenchmarkID             string
		Kind                    string
		ClusterName             string
		KueueQueueName          string
		TtlSecondsAfterFinished int
		MaxRestarts             int
		NumSlices               int
		VmsPerSlice             int
		ActiveDeadlineSeconds   int64
		StartupTimeoutSeconds   int64
		RestartPolicy           corev1.RestartPolicy
		Image                   string
		CommandToRun            string
		Limits                  []limit
		NodeSelector            map[string]string
	}{
		WorkloadName:            workloadName,
		BenchmarkID:             job.BenchmarkID,
		Kind:                    string(job.Kind),
		ClusterName:             job.ClusterName,
		KueueQueueName:          kueueQueueName,
		TtlSecondsAfterFinished: ttlSecondsAfterFinished,
		MaxRestarts:             maxRestarts,
		NumSlices:               numSlices,
		VmsPerSlice:             vmsPerSlice,
		ActiveDeadlineSeconds:   int64(math.Ceil(job.Timeout.Seconds())),
		StartupTimeoutSeconds:   int64(math.Ceil(job.StartupTimeout.Seconds())),
		RestartPolicy:           corev1.RestartPolicyNever,
		Image:                   job.DockerImage,
		CommandToRun:            commandToRun,
		Limits:                  limits,
		NodeSelector:            job.NodeSelector,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute jobset template: %w", err)
	}

	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return "", fmt.Errorf("generated jobset manifest is not valid YAML: %w", err)
	}
	logging.Debug("GKE Manifest YAML content:\n%s", buf.String())
	return buf.String(), nil
}

// GenerateWorkloadName turns a benchmark id into a DNS-1123 label with a
// random suffix, so repeated runs of one benchmark do not collide.
func GenerateWorkloadName(benchmarkID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(benchmarkID) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	prefix := b.String()
	if len(prefix) > maxWorkloadPrefix {
		prefix = prefix[:maxWorkloadPrefix]
	}
	prefix = strings.Trim(prefix, "-")
	if prefix == "" {
		prefix = "xlml-workload"
	}
	return prefix + "-" + rand.String(5)
}

func resourceLimits(job orchestrator.JobDefinition) ([]limit, error) {
	base, ok := podLimits[job.AcceleratorResource]
	if !ok {
		return nil, configerr.InvalidArgument("%s: unknown accelerator resource %q", job.BenchmarkID, job.AcceleratorResource)
	}
	list := corev1.ResourceList{}
	for name, value := range map[corev1.ResourceName]string{corev1.ResourceCPU: base.cpu, corev1.ResourceMemory: base.memory} {
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s limit %q: %w", name, value, err)
		}
		list[name] = q
	}
	if job.AcceleratorResource != "" {
		if job.AcceleratorsPerVm < 1 {
			return nil, configerr.InvalidArgument("%s: %s limit must be positive, got %d", job.BenchmarkID, job.AcceleratorResource, job.AcceleratorsPerVm)
		}
		list[corev1.ResourceName(job.AcceleratorResource)] = *resource.NewQuantity(int64(job.AcceleratorsPerVm), resource.DecimalSI)
	}

	limits := make([]limit, 0, len(list))
	for name, q := range list {
		limits = append(limits, limit{Name: name, Quantity: q.String()})
	}
	sort.Slice(limits, func(i, j int) bool { return limits[i].Name < limits[j].Name })
	return limits, nil
}

func jsonString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
