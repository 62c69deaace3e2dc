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

// Package config resolves the settings shared by every xlml command from
// flags, XLMLTEST_* environment variables and built-in defaults, in that order.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"xlml/pkg/configerr"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. XLMLTEST_CONFIGS.
	EnvPrefix = "XLMLTEST"

	// DefaultConfigsDir is where Composer mounts the compiled legacy configs.
	DefaultConfigsDir = "/home/airflow/gcs/dags/dags/jsonnet"
)

// Keys of the settings. Flags use the same names.
const (
	KeyConfigsDir = "configs-dir"
	KeyVerbose    = "verbose"
)

// Settings are the resolved values.
type Settings struct {
	ConfigsDir string
	Verbose    bool
}

// New returns a viper instance with defaults and environment bindings in
// place. XLMLTEST_CONFIGS names the configs directory for compatibility with
// existing deployments; other keys map to XLMLTEST_<KEY> with dashes replaced
// by underscores.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyConfigsDir, DefaultConfigsDir)
	v.SetDefault(KeyVerbose, false)
	_ = v.BindEnv(KeyConfigsDir, EnvPrefix+"_CONFIGS", EnvPrefix+"_CONFIGS_DIR")
	return v
}

// BindFlags lets set flags in fs override the environment.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyConfigsDir, KeyVerbose} {
		if f := fs.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads the settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		ConfigsDir: v.GetString(KeyConfigsDir),
		Verbose:    v.GetBool(KeyVerbose),
	}
	if s.ConfigsDir == "" {
		return Settings{}, configerr.InvalidArgument("%s must not be empty", KeyConfigsDir)
	}
	return s, nil
}
