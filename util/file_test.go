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

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tex")

	file, err := CreateOutputFile(path)
	require.NoError(t, err)
	_, err = file.WriteString("content")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestCreateOutputFile_truncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tex")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0644))

	file, err := CreateOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCreateOutputFile_createsMissingDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.tex")

	file, err := CreateOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
