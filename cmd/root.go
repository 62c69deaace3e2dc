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

// Package cmd defines the xlml command line.
package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"xlml/pkg/config"
	"xlml/pkg/legacy"
	"xlml/pkg/logging"
)

var (
	v        = config.New()
	settings config.Settings

	// appFs backs every file the commands read or write.
	appFs = afero.NewOsFs()
)

func init() {
	rootCmd.PersistentFlags().String(config.KeyConfigsDir, config.DefaultConfigsDir,
		"Directory holding the compiled legacy JSonnet configs. Overrides $XLMLTEST_CONFIGS.")
	rootCmd.PersistentFlags().BoolP(config.KeyVerbose, "v", false, "Log debug output.")
}

var rootCmd = &cobra.Command{
	Use:   "xlml",
	Short: "Inspects ML accelerator test configurations.",
	Long: `xlml resolves ML accelerator test configurations, including legacy
JSonnet configs compiled to JSON, and derives what a scheduler needs from them:
benchmark ids, setup and test scripts, and GKE JobSet manifests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		s, err := config.Load(v)
		if err != nil {
			return err
		}
		settings = s
		logging.SetVerbose(s.Verbose)
		logging.Debug("Using legacy configs in %s", s.ConfigsDir)
		return nil
	},
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal("%v", err)
	}
}

func newLoader() *legacy.FileLoader {
	return legacy.NewFileLoader(appFs, settings.ConfigsDir)
}
