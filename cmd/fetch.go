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
	"github.com/spf13/cobra"

	"xlml/pkg/legacy"
	"xlml/pkg/logging"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch SOURCE",
	Short: "Downloads compiled legacy configs into the configs directory.",
	Long: `The 'fetch' command copies a directory of compiled legacy configs into the
configs directory. SOURCE may be a local path, a git URL (git::https://...) or a
GCS bucket (gs://...).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := legacy.Fetch(cmd.Context(), args[0], settings.ConfigsDir); err != nil {
			return err
		}
		logging.Info("Legacy configs are available in %s", settings.ConfigsDir)
		return nil
	},
}
