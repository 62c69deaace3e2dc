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

// Package shell assembles shell scripts from commands and argument lists.
package shell

import (
	"strings"

	"github.com/alessio/shellescape"
)

// StrictMode makes a script exit on the first failing command or unset variable and trace every line.
const StrictMode = "set -xue"

// Separators used when joining commands into a script.
const (
	NewlineSeparator   = "\n"
	SemicolonSeparator = ";"
)

// Quote returns s quoted so that a POSIX shell reads it back as a single word.
func Quote(s string) string {
	return shellescape.Quote(s)
}

// Join quotes each argument and joins them with spaces, preserving argument boundaries.
func Join(args []string) string {
	return shellescape.QuoteCommand(args)
}

// Script joins commands verbatim with sep. Each command is already a complete
// shell statement and is not quoted.
func Script(sep string, cmds ...string) string {
	return strings.Join(cmds, sep)
}

// StrictScript is Script with StrictMode as the first statement.
func StrictScript(sep string, cmds ...string) string {
	return Script(sep, append([]string{StrictMode}, cmds...)...)
}
