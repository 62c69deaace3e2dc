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
	"fmt"

	"github.com/spf13/cobra"

	"xlml/pkg/logging"
	"xlml/pkg/orchestrator"
	"xlml/pkg/orchestrator/gke"
)

var (
	outputManifest string

	// JobSet and Kueue related options
	workloadName            string
	kueueQueueName          string
	maxRestarts             int
	ttlSecondsAfterFinished int
)

func init() {
	rootCmd.AddCommand(manifestCmd)
	addLegacyFlags(manifestCmd)

	manifestCmd.Flags().StringVarP(&outputManifest, "output-manifest", "o", "", "Path to write the generated Kubernetes manifest to. Defaults to stdout.")

	// JobSet and Kueue flags
	manifestCmd.Flags().StringVarP(&workloadName, "workload-name", "w", "", "Name of the workload (JobSet). Derived from the benchmark id if empty.")
	manifestCmd.Flags().StringVar(&kueueQueueName, "kueue-queue", gke.DefaultKueueQueueName, "Name of the Kueue LocalQueue to submit the workload to.")
	manifestCmd.Flags().IntVar(&maxRestarts, "max-restarts", gke.DefaultMaxRestarts, "Maximum number of restarts for the JobSet before failing.")
	manifestCmd.Flags().IntVar(&ttlSecondsAfterFinished, "ttl-seconds-after-finished", gke.DefaultTtlSecondsAfterFinished, "Time (in seconds) to retain the JobSet after it finishes.")
}

var manifestCmd = &cobra.Command{
	Use:   "manifest NAME",
	Short: "Generates the GKE JobSet manifest of a legacy test config.",
	Long: `The 'manifest' command converts a compiled legacy config into a Kubernetes JobSet
that runs its setup and test scripts on GKE, integrated with Kueue. Only configs
that run on a cluster (pytorch-gpu) have a manifest; TPU VM configs are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runManifestCmd,
}

func runManifestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveLegacy(cmd, args[0])
	if err != nil {
		return err
	}

	jobDef, err := orchestrator.FromTestConfig(cfg)
	if err != nil {
		return err
	}
	jobDef.OutputManifest = outputManifest
	jobDef.WorkloadName = workloadName
	jobDef.KueueQueueName = kueueQueueName
	jobDef.MaxRestarts = maxRestarts
	jobDef.TtlSecondsAfterFinished = ttlSecondsAfterFinished

	gkeOrchestrator, err := gke.NewGKEOrchestrator(appFs, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to create GKE orchestrator: %w", err)
	}
	if err := gkeOrchestrator.SubmitJob(jobDef); err != nil {
		return err
	}
	logging.Debug("Generated manifest for %s", cfg.BenchmarkID())
	return nil
}
