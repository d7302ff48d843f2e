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

// Package report renders the computed statistics as an Excel workbook
// and as a LaTeX overview document.
package report

import (
	"fmt"
	"math"
	"regexp"

	"github.com/xuri/excelize/v2"

	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/stats"
)

// Excel refuses sheet names longer than this.
const maxSheetNameLen = 31

// A Rename is a compiled sheet-name rewrite rule.
type Rename struct {
	Pattern *regexp.Regexp
	Replace string
}

// CompileRenames compiles the configured pattern/replace pairs into
// rename rules.
func CompileRenames(rules map[string]config.SheetRename) ([]Rename, error) {
	var out []Rename
	for name, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sheet rename %s: %w", name, err)
		}
		out = append(out, Rename{Pattern: re, Replace: rule.Replace})
	}
	return out, nil
}

// ExcelOptions controls the workbook layout.
type ExcelOptions struct {
	// NDigits is the number of decimals the values are rounded to.
	NDigits int
	// SheetRenames are applied to every sheet name in order.
	SheetRenames []Rename
	// GroupLabels renames group columns per file base.
	GroupLabels map[string]map[string]string
}

// SheetName derives the sheet name for a file base: renames applied,
// truncated to the Excel limit, and disambiguated against taken names
// with a numeric suffix.
func SheetName(fileBase string, renames []Rename, taken map[string]bool) string {
	name := fileBase
	for _, r := range renames {
		name = r.Pattern.ReplaceAllString(name, r.Replace)
	}
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	if taken[name] {
		base := name
		if len(base) > maxSheetNameLen-2 {
			base = base[:maxSheetNameLen-2]
		}
		for i := 1; ; i++ {
			name = fmt.Sprintf("%s%02d", base, i)
			if !taken[name] {
				break
			}
		}
	}
	taken[name] = true
	return name
}

// WriteWorkbook writes one sheet per breakdown to an xlsx file at path.
// Every sheet carries a header row (module, variable, option, one column
// per group) followed by one row per statistic.
func WriteWorkbook(path string, results []*stats.Result, opts ExcelOptions) error {
	book := excelize.NewFile()
	defer book.Close()

	taken := make(map[string]bool)
	for i, result := range results {
		sheet := SheetName(result.FileBase, opts.SheetRenames, taken)
		// the first breakdown takes over the workbook's default sheet
		if i == 0 {
			if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("workbook sheet %s: %w", sheet, err)
			}
		} else if _, err := book.NewSheet(sheet); err != nil {
			return fmt.Errorf("workbook sheet %s: %w", sheet, err)
		}

		header := []any{"module", "variable", "option"}
		labels := opts.GroupLabels[result.FileBase]
		for _, group := range result.Groups {
			if label, ok := labels[group]; ok {
				group = label
			}
			header = append(header, group)
		}
		if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}

		for i, row := range result.Rows {
			cells := []any{row.Module, row.Variable, row.Option}
			for _, v := range row.Values {
				if math.IsNaN(v) {
					cells = append(cells, nil)
				} else {
					cells = append(cells, stats.Round(v, opts.NDigits))
				}
			}
			axis, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := book.SetSheetRow(sheet, axis, &cells); err != nil {
				return err
			}
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}
