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

// Package stats computes weighted sample statistics of the merged
// dataset per breakdown. Every variable is aggregated per group with its
// configured weight column; dict variables expand into one statistic per
// option value.
package stats

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/statnl/domainstat/frame"
)

// A Variable describes one metric to aggregate.
type Variable struct {
	Module  string
	Name    string
	Label   string
	Type    string
	Weight  string
	Filter  string
	Options []string
}

// A Row holds the statistics of one variable (or one option of a dict
// variable) across all groups of a breakdown.
type Row struct {
	Module   string
	Variable string
	Option   string
	Type     string
	Label    string

	// Values holds the weighted mean per group, NaN when the group has
	// no usable records.
	Values []float64
	// StdErrs holds the standard error of the mean per group.
	StdErrs []float64
	// Counts holds the unweighted number of records per group.
	Counts []int
	// WeightSums holds the summed weights per group, the population
	// estimate the mean extrapolates to.
	WeightSums []float64
}

// positiveOptions are the option values counted as a positive outcome of
// a dict question.
var positiveOptions = map[string]bool{
	"passed": true,
	"yes":    true,
	"good":   true,
}

// Positive reports whether the row represents a positive outcome: for
// dict variables only the passed/yes/good options qualify. Rows without
// an option always do, including dict variables that were aggregated
// numerically after an option translation.
func (r Row) Positive() bool {
	if r.Type != "dict" || r.Option == "" {
		return true
	}
	return positiveOptions[strings.ToLower(r.Option)]
}

// A Result holds all statistics of one breakdown.
type Result struct {
	FileBase  string
	RunID     string
	GroupKeys []string
	// Groups holds the display label of every group, in group order.
	Groups []string
	Rows   []Row
}

// RowsFor returns the rows belonging to the named variable.
func (r *Result) RowsFor(variable string) []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Variable == variable {
			out = append(out, row)
		}
	}
	return out
}

// Compute aggregates all variables of the dataset per group of the given
// breakdown. Variables without a matching dataset or weight column are
// skipped with a warning, mirroring partially filled scan databases.
// progress, when non-nil, is called once per processed variable.
func Compute(f *frame.Frame, fileBase string, groupKeys []string, vars []Variable, progress func()) (*Result, error) {
	groups, err := f.GroupRows(groupKeys)
	if err != nil {
		return nil, fmt.Errorf("statistics %s: %w", fileBase, err)
	}

	result := &Result{
		FileBase:  fileBase,
		RunID:     uuid.NewString(),
		GroupKeys: groupKeys,
		Groups:    make([]string, len(groups)),
	}
	for i, g := range groups {
		result.Groups[i] = g.Label()
	}

	for _, v := range vars {
		if progress != nil {
			progress()
		}
		col := f.Column(v.Name)
		if col == nil {
			slog.Warn("variable not present in dataset, skipping", "variable", v.Name)
			continue
		}
		weightCol := f.Column(v.Weight)
		if weightCol == nil || !weightCol.Kind.Numeric() {
			slog.Warn("weight column missing, skipping", "variable", v.Name, "weight", v.Weight)
			continue
		}

		filterCol, err := filterColumn(f, v.Filter)
		if err != nil {
			return nil, fmt.Errorf("statistics %s, variable %s: %w", fileBase, v.Name, err)
		}

		// A dict variable whose option values were translated to
		// numbers carries the positive share directly and falls
		// through to the numeric aggregation below.
		if v.Type == "dict" && !col.Kind.Numeric() {
			for _, option := range options(col, v.Options) {
				row := Row{Module: v.Module, Variable: v.Name, Option: option, Type: v.Type, Label: v.Label}
				aggregateOption(&row, col, weightCol, filterCol, groups, option)
				result.Rows = append(result.Rows, row)
			}
			continue
		}

		if !col.Kind.Numeric() {
			slog.Warn("variable is not numeric, skipping", "variable", v.Name, "type", v.Type)
			continue
		}
		row := Row{Module: v.Module, Variable: v.Name, Type: v.Type, Label: v.Label}
		aggregateNumeric(&row, col, weightCol, filterCol, groups)
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// filterColumn resolves the optional filter column of a variable.
func filterColumn(f *frame.Frame, filter string) (*frame.Column, error) {
	if filter == "" {
		return nil, nil
	}
	c := f.Column(filter)
	if c == nil {
		return nil, fmt.Errorf("filter column %s missing", filter)
	}
	if !c.Kind.Numeric() {
		return nil, fmt.Errorf("filter column %s is not numeric", filter)
	}
	return c, nil
}

// options returns the option values of a dict variable: the configured
// list when present, otherwise the distinct values observed in the data.
func options(col *frame.Column, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range col.Labels {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// passesFilter reports whether a row survives the variable's filter.
func passesFilter(filterCol *frame.Column, row int) bool {
	if filterCol == nil {
		return true
	}
	return !filterCol.Missing(row) && filterCol.Floats[row] > 0
}

// aggregateNumeric fills row with the weighted mean of a numeric column
// per group.
func aggregateNumeric(row *Row, col, weightCol, filterCol *frame.Column, groups []frame.Group) {
	row.Values = make([]float64, len(groups))
	row.StdErrs = make([]float64, len(groups))
	row.Counts = make([]int, len(groups))
	row.WeightSums = make([]float64, len(groups))

	for g, group := range groups {
		var xs, ws []float64
		for _, r := range group.Rows {
			if col.Missing(r) || weightCol.Missing(r) || !passesFilter(filterCol, r) {
				continue
			}
			xs = append(xs, col.Floats[r])
			ws = append(ws, weightCol.Floats[r])
		}
		fillGroup(row, g, xs, ws)
	}
}

// aggregateOption fills row with the weighted share of records taking
// the given option value, per group.
func aggregateOption(row *Row, col, weightCol, filterCol *frame.Column, groups []frame.Group, option string) {
	row.Values = make([]float64, len(groups))
	row.StdErrs = make([]float64, len(groups))
	row.Counts = make([]int, len(groups))
	row.WeightSums = make([]float64, len(groups))

	for g, group := range groups {
		var xs, ws []float64
		for _, r := range group.Rows {
			if col.Missing(r) || weightCol.Missing(r) || !passesFilter(filterCol, r) {
				continue
			}
			indicator := 0.0
			if col.Labels[r] == option {
				indicator = 1.0
			}
			xs = append(xs, indicator)
			ws = append(ws, weightCol.Floats[r])
		}
		fillGroup(row, g, xs, ws)
	}
}

// fillGroup writes the aggregates of one group into row. Empty groups
// yield NaN values rather than aborting the run.
func fillGroup(row *Row, g int, xs, ws []float64) {
	row.Counts[g] = len(xs)
	if len(xs) == 0 {
		row.Values[g] = math.NaN()
		row.StdErrs[g] = math.NaN()
		return
	}
	for _, w := range ws {
		row.WeightSums[g] += w
	}
	row.Values[g] = stat.Mean(xs, ws)
	if len(xs) > 1 {
		row.StdErrs[g] = stat.StdErr(stat.StdDev(xs, ws), float64(len(xs)))
	} else {
		row.StdErrs[g] = math.NaN()
	}
}

// Round returns v rounded to n decimal digits. NaN survives rounding.
func Round(v float64, n int) float64 {
	if math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(n))
	return math.Round(v*scale) / scale
}
