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

	"github.com/moby/patternmatcher/ignorefile"
	"github.com/spf13/cobra"
)

var patternsFrom string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&patternsFrom, "patterns-from", "", "File of additional patterns in .dockerignore format, applied after the arguments.")
}

var listCmd = &cobra.Command{
	Use:   "list [PATTERN...]",
	Short: "Lists the legacy test configs in the configs directory.",
	Long: `The 'list' command prints the name of every compiled legacy config, one per line.
Patterns follow .dockerignore syntax (e.g. 'tests/pytorch/**/*.json', '!**/*-1vm.json').`,
	RunE: runListCmd,
}

func runListCmd(cmd *cobra.Command, args []string) error {
	patterns := args
	if patternsFrom != "" {
		f, err := appFs.Open(patternsFrom)
		if err != nil {
			return fmt.Errorf("failed to open pattern file %s: %w", patternsFrom, err)
		}
		defer f.Close()
		filePatterns, err := ignorefile.ReadAll(f)
		if err != nil {
			return fmt.Errorf("failed to read pattern file %s: %w", patternsFrom, err)
		}
		patterns = append(append([]string(nil), args...), filePatterns...)
	}

	names, err := newLoader().List(patterns)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
