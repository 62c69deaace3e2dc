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
	"gopkg.in/yaml.v3"

	"xlml/pkg/accelerator"
	"xlml/pkg/legacy"
	"xlml/pkg/testconfig"
)

var (
	family     string
	reserved   bool
	network    string
	subnetwork string
)

func init() {
	rootCmd.AddCommand(describeCmd)
	addLegacyFlags(describeCmd)
}

// addLegacyFlags registers the flags that select and place a legacy config.
func addLegacyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&family, "family", "f", string(legacy.FamilyJax), "Legacy config family: jax, pytorch or pytorch-gpu.")
	cmd.Flags().BoolVar(&reserved, "reserved", false, "Request TPUs from a reservation. TPU families only.")
	cmd.Flags().StringVar(&network, "network", accelerator.DefaultNetwork, "Network of the TPU. TPU families only.")
	cmd.Flags().StringVar(&subnetwork, "subnetwork", accelerator.DefaultNetwork, "Subnetwork of the TPU. TPU families only.")
}

var describeCmd = &cobra.Command{
	Use:   "describe NAME",
	Short: "Prints the scheduler view of a legacy test config.",
	Long: `The 'describe' command loads a compiled legacy config relative to the configs
directory and prints its kind, benchmark id, accelerator, owner and scripts as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribeCmd,
}

func runDescribeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveLegacy(cmd, args[0])
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(testconfig.Describe(cfg)); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}

// resolveLegacy converts the named config with the family and placement flags
// of cmd. Placement flags are only passed on when set, so GPU configs accept
// the defaults.
func resolveLegacy(cmd *cobra.Command, name string) (testconfig.Config, error) {
	var opts []legacy.TpuOption
	if cmd.Flags().Changed("reserved") {
		opts = append(opts, legacy.WithReserved(reserved))
	}
	if cmd.Flags().Changed("network") || cmd.Flags().Changed("subnetwork") {
		opts = append(opts, legacy.WithNetwork(network, subnetwork))
	}
	return legacy.NewAdapter(newLoader()).Resolve(legacy.Family(family), name, opts...)
}
