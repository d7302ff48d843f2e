// Copyright 2022 - 2026 The DomainStat Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache persists intermediate results between the analysis
// stages as gob files in the cache directory, so an expensive stage does
// not have to be repeated on every invocation.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Reset levels, from the --reset flag. ResetNone means use every cache
// that exists.
const (
	ResetNone = -1
	// ResetAll rebuilds everything, including the merged dataset.
	ResetAll = 0
	// ResetStats recomputes the statistics but keeps the merged dataset.
	ResetStats = 1
)

// ErrMissing is returned when a cache entry does not exist yet.
var ErrMissing = errors.New("cache entry missing")

// Dir is a cache directory.
type Dir struct {
	path string
}

// New returns a cache rooted at path, creating the directory if needed.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the full path of a cache entry.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name+".gob")
}

// Exists reports whether the named entry is present.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.Path(name))
	return err == nil
}

// Save writes v as the named entry. The entry is written to a temporary
// file first so a crashed run never leaves a truncated cache behind.
func (d *Dir) Save(name string, v any) error {
	tmp, err := os.CreateTemp(d.path, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save cache %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("save cache %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save cache %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), d.Path(name))
}

// Load reads the named entry into v. A missing entry yields ErrMissing.
func (d *Dir) Load(name string, v any) error {
	file, err := os.Open(d.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissing, name)
		}
		return fmt.Errorf("load cache %s: %w", name, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("load cache %s: %w", name, err)
	}
	return nil
}
