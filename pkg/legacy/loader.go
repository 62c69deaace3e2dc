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
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/moby/patternmatcher"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"xlml/pkg/configerr"
	"xlml/pkg/logging"
)

// Document is a parsed, pre-compiled legacy test config.
type Document map[string]any

// Loader resolves a legacy config by name.
type Loader interface {
	// Load returns the named document. It fails with configerr.ErrNotFound when
	// the name is unknown and configerr.ErrMalformed when the file does not hold
	// a JSON object.
	Load(name string) (Document, error)
}

// FileLoader reads compiled configs from <dir>/<name>.
type FileLoader struct {
	fs  afero.Fs
	dir string
}

// NewFileLoader returns a FileLoader rooted at dir on fs.
func NewFileLoader(fs afero.Fs, dir string) *FileLoader {
	return &FileLoader{fs: fs, dir: dir}
}

// Dir returns the directory the loader reads from.
func (l *FileLoader) Dir() string {
	return l.dir
}

func (l *FileLoader) Load(name string) (Document, error) {
	p, ok := l.path(name)
	if !ok {
		return nil, configerr.NotFound("invalid legacy config name %q", name)
	}

	info, err := l.fs.Stat(p)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil, configerr.NotFound("no legacy config %q in %s%s", name, l.dir, l.hint(name))
		}
		return nil, errors.Wrapf(err, "failed to stat legacy config %q", p)
	}
	if info.IsDir() {
		return nil, configerr.NotFound("legacy config %q is a directory", name)
	}

	data, err := afero.ReadFile(l.fs, p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read legacy config %q", p)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, configerr.Malformed("%s is not a JSON object: %v", p, err)
	}
	if doc == nil {
		return nil, configerr.Malformed("%s is not a JSON object", p)
	}
	logging.Debug("Loaded legacy config %q from %s", name, p)
	return doc, nil
}

// path maps name to a file under the loader directory. Names that are empty,
// absolute or climb out of the directory are rejected.
func (l *FileLoader) path(name string) (string, bool) {
	clean := path.Clean(filepath.ToSlash(name))
	if name == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean)), true
}

func (l *FileLoader) hint(name string) string {
	names, err := l.List(nil)
	if err != nil {
		return ""
	}
	return configerr.Hint(name, names)
}

// List returns the names of all configs under the loader directory, in lexical
// order, keeping those matched by patterns. Patterns use .dockerignore syntax,
// including "!" exclusions; no patterns keeps every config.
func (l *FileLoader) List(patterns []string) ([]string, error) {
	var matcher *patternmatcher.PatternMatcher
	if len(patterns) > 0 {
		m, err := patternmatcher.New(patterns)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create pattern matcher")
		}
		matcher = m
	}

	root := l.root()
	var names []string
	err := afero.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.Wrapf(err, "failed to get relative path for %q", p)
		}
		rel = filepath.ToSlash(rel)
		if matcher != nil {
			matched, err := matcher.MatchesOrParentMatches(rel)
			if err != nil {
				return errors.Wrapf(err, "failed to match %q", rel)
			}
			if !matched {
				return nil
			}
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, configerr.NotFound("legacy config directory %s does not exist", l.dir)
		}
		return nil, errors.Wrapf(err, "failed to list legacy configs in %s", l.dir)
	}
	return names, nil
}

// root returns the directory to walk, following the loader directory if it is
// a symlink. Walking never descends into a symlinked root otherwise.
func (l *FileLoader) root() string {
	lr, ok := l.fs.(afero.LinkReader)
	if !ok {
		return l.dir
	}
	target, err := lr.ReadlinkIfPossible(l.dir)
	if err != nil {
		return l.dir
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(l.dir), target)
	}
	return target
}
