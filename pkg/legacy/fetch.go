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

package legacy

import (
	"context"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"

	"xlml/pkg/configerr"
	"xlml/pkg/logging"
)

// Fetch copies a directory of compiled configs from src into dst. Sources use
// go-getter syntax, so local paths, git repositories and gs:// buckets all
// work. Relative local sources resolve against the working directory. The
// configs are staged in a temporary directory and then merged into dst, which
// may already exist.
func Fetch(ctx context.Context, src, dst string) error {
	if src == "" || dst == "" {
		return configerr.InvalidArgument("fetch needs both a source and a destination")
	}
	pwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to get working directory")
	}
	staging, err := os.MkdirTemp("", "xlml-fetch-")
	if err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(staging)
	staged := filepath.Join(staging, "configs")

	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     staged,
		Pwd:     pwd,
		Mode:    getter.ClientModeDir,
		Getters: copyingGetters(),
	}
	logging.Info("Fetching legacy configs from %s into %s", src, dst)
	if err := client.Get(); err != nil {
		return errors.Wrapf(err, "failed to fetch legacy configs from %s", src)
	}
	if err := copy.Copy(staged, dst); err != nil {
		return errors.Wrapf(err, "failed to copy legacy configs into %s", dst)
	}
	return nil
}

// copyingGetters returns the default getters with local sources copied
// instead of symlinked.
func copyingGetters() map[string]getter.Getter {
	getters := make(map[string]getter.Getter, len(getter.Getters))
	for scheme, g := range getter.Getters {
		getters[scheme] = g
	}
	getters["file"] = &getter.FileGetter{Copy: true}
	return getters
}
