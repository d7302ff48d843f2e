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

package report

import (
	"math"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/stats"
)

func TestSheetName(t *testing.T) {
	renames := []Rename{{Pattern: regexp.MustCompile(`^stats_`), Replace: ""}}
	taken := make(map[string]bool)

	assert.Equal(t, "per_gk", SheetName("stats_per_gk", renames, taken))
	// second sheet with the same derived name gets a numeric suffix
	assert.Equal(t, "per_gk01", SheetName("stats_per_gk", renames, taken))
	assert.Equal(t, "per_gk02", SheetName("stats_per_gk", renames, taken))

	long := "a_very_long_statistics_file_base_name_indeed"
	name := SheetName(long, nil, taken)
	assert.Len(t, name, maxSheetNameLen)
}

func TestCompileRenames(t *testing.T) {
	renames, err := CompileRenames(map[string]config.SheetRename{
		"strip": {Pattern: "^stats_", Replace: ""},
	})
	require.NoError(t, err)
	require.Len(t, renames, 1)

	_, err = CompileRenames(map[string]config.SheetRename{
		"broken": {Pattern: "(", Replace: ""},
	})
	assert.ErrorContains(t, err, "sheet rename broken")
}

func TestWriteWorkbook(t *testing.T) {
	result := &stats.Result{
		FileBase: "stats_per_gk",
		Groups:   []string{"small", "large"},
		Rows: []stats.Row{
			{Module: "dnssec", Variable: "dnssec_exists", Values: []float64{0.66666, 0.5}},
			{Module: "tls", Variable: "web_tls", Option: "Passed", Values: []float64{0.75, math.NaN()}},
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	opts := ExcelOptions{
		NDigits:      2,
		SheetRenames: []Rename{{Pattern: regexp.MustCompile(`^stats_`), Replace: ""}},
		GroupLabels:  map[string]map[string]string{"stats_per_gk": {"small": "Small firms"}},
	}
	require.NoError(t, WriteWorkbook(path, []*stats.Result{result}, opts))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"per_gk"}, book.GetSheetList())

	rows, err := book.GetRows("per_gk")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"module", "variable", "option", "Small firms", "large"}, rows[0])
	assert.Equal(t, "dnssec", rows[1][0])
	assert.Equal(t, "0.67", rows[1][3])
	// NaN turns into an empty cell
	assert.Equal(t, "Passed", rows[2][2])
	assert.Len(t, rows[2], 4)
}

func TestWriteWorkbook_noBreakdowns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, WriteWorkbook(path, nil, ExcelOptions{}))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	assert.Len(t, book.GetSheetList(), 1)
}

func TestWriteWorkbook_sheetNamedLikeDefault(t *testing.T) {
	results := []*stats.Result{
		{FileBase: "Sheet1", Groups: []string{"all"},
			Rows: []stats.Row{{Module: "m", Variable: "v", Values: []float64{1}}}},
		{FileBase: "Sheet2", Groups: []string{"all"},
			Rows: []stats.Row{{Module: "m", Variable: "w", Values: []float64{0}}}},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteWorkbook(path, results, ExcelOptions{}))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Sheet1", "Sheet2"}, book.GetSheetList())
}
