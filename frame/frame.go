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

// Package frame implements the column-oriented table the analysis runs on.
// A frame holds typed columns of equal length; numeric columns store
// float64 with NaN marking missing values, label columns store strings
// with "" marking missing values.
package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a column.
type Kind int

const (
	String Kind = iota
	Category
	Float
	Bool
	Percentage
)

// Numeric reports whether values of this kind live in the Floats slice.
func (k Kind) Numeric() bool {
	return k == Float || k == Bool || k == Percentage
}

// KindFromType maps a configured variable type name to a column Kind.
// Unknown names map to String.
func KindFromType(typeName string) Kind {
	switch typeName {
	case "bool":
		return Bool
	case "percentage":
		return Percentage
	case "float":
		return Float
	case "dict":
		return Category
	default:
		return String
	}
}

// A Column is a single named, typed column. Exactly one of Floats and
// Labels is populated, depending on Kind.
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Labels []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind.Numeric() {
		return len(c.Floats)
	}
	return len(c.Labels)
}

// Missing reports whether the value at row i is missing.
func (c *Column) Missing(i int) bool {
	if c.Kind.Numeric() {
		return math.IsNaN(c.Floats[i])
	}
	return c.Labels[i] == ""
}

// Value returns the value at row i as a string for label columns and as
// a float64 for numeric columns.
func (c *Column) Value(i int) any {
	if c.Kind.Numeric() {
		return c.Floats[i]
	}
	return c.Labels[i]
}

// AsFloats converts a label column to float64 values. Values that do not
// parse become NaN. Numeric columns are returned as is.
func (c *Column) AsFloats() []float64 {
	if c.Kind.Numeric() {
		return c.Floats
	}
	out := make([]float64, len(c.Labels))
	for i, s := range c.Labels {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// A Frame is an ordered collection of equally sized columns.
type Frame struct {
	Cols []*Column

	byName map[string]*Column
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{byName: make(map[string]*Column)}
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	if len(f.Cols) == 0 {
		return 0
	}
	return f.Cols[0].Len()
}

// NumCols returns the number of columns in the frame.
func (f *Frame) NumCols() int {
	return len(f.Cols)
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Cols))
	for i, c := range f.Cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (f *Frame) Column(name string) *Column {
	f.index()
	return f.byName[name]
}

// index rebuilds the name lookup. It tolerates frames restored by gob,
// which only carries the exported fields.
func (f *Frame) index() {
	if f.byName != nil && len(f.byName) == len(f.Cols) {
		return
	}
	f.byName = make(map[string]*Column, len(f.Cols))
	for _, c := range f.Cols {
		f.byName[c.Name] = c
	}
}

// AddColumn appends col to the frame. Adding a column whose length does
// not match the frame or whose name is already taken is an error.
func (f *Frame) AddColumn(col *Column) error {
	if len(f.Cols) > 0 && col.Len() != f.NumRows() {
		return fmt.Errorf("column %s has %d rows, frame has %d", col.Name, col.Len(), f.NumRows())
	}
	f.index()
	if _, ok := f.byName[col.Name]; ok {
		return fmt.Errorf("duplicate column %s", col.Name)
	}
	f.Cols = append(f.Cols, col)
	f.byName[col.Name] = col
	return nil
}

// AddLabels appends a string column with the given values.
func (f *Frame) AddLabels(name string, values []string) error {
	return f.AddColumn(&Column{Name: name, Kind: String, Labels: values})
}

// AddFloats appends a numeric column of the given kind.
func (f *Frame) AddFloats(name string, kind Kind, values []float64) error {
	if !kind.Numeric() {
		return fmt.Errorf("column %s: kind is not numeric", name)
	}
	return f.AddColumn(&Column{Name: name, Kind: kind, Floats: values})
}

// Drop removes the named column if present.
func (f *Frame) Drop(name string) {
	f.index()
	if _, ok := f.byName[name]; !ok {
		return
	}
	delete(f.byName, name)
	for i, c := range f.Cols {
		if c.Name == name {
			f.Cols = append(f.Cols[:i], f.Cols[i+1:]...)
			break
		}
	}
}

// Rename renames a column. Renaming a missing column is a no-op.
func (f *Frame) Rename(old, new string) {
	f.index()
	c, ok := f.byName[old]
	if !ok {
		return
	}
	delete(f.byName, old)
	c.Name = new
	f.byName[new] = c
}

// Select returns a new frame containing the given rows in order.
func (f *Frame) Select(rows []int) *Frame {
	out := New()
	for _, c := range f.Cols {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind.Numeric() {
			nc.Floats = make([]float64, len(rows))
			for i, r := range rows {
				nc.Floats[i] = c.Floats[r]
			}
		} else {
			nc.Labels = make([]string, len(rows))
			for i, r := range rows {
				nc.Labels[i] = c.Labels[r]
			}
		}
		out.Cols = append(out.Cols, nc)
	}
	out.index()
	return out
}

// Filter returns a new frame with the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	rows := make([]int, 0, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return f.Select(rows)
}

// DropMissing returns a new frame without the rows that have a missing
// value in the named column.
func (f *Frame) DropMissing(name string) (*Frame, error) {
	c := f.Column(name)
	if c == nil {
		return nil, fmt.Errorf("no such column: %s", name)
	}
	return f.Filter(func(row int) bool { return !c.Missing(row) }), nil
}

// Dedupe returns a new frame keeping only the first row for every
// distinct value of the named column.
func (f *Frame) Dedupe(name string) (*Frame, error) {
	c := f.Column(name)
	if c == nil {
		return nil, fmt.Errorf("no such column: %s", name)
	}
	seen := make(map[string]bool, f.NumRows())
	return f.Filter(func(row int) bool {
		key := fmt.Sprint(c.Value(row))
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	}), nil
}

// Join returns the inner join of f and other on the named label column.
// Every row of f is matched with the first row of other carrying the
// same non-missing key. Key columns of other are dropped from the result.
func (f *Frame) Join(other *Frame, on string) (*Frame, error) {
	left := f.Column(on)
	right := other.Column(on)
	if left == nil || right == nil {
		return nil, fmt.Errorf("join column %s missing", on)
	}
	if left.Kind.Numeric() || right.Kind.Numeric() {
		return nil, fmt.Errorf("join column %s must hold labels", on)
	}

	rightRow := make(map[string]int, other.NumRows())
	for i, key := range right.Labels {
		if key == "" {
			continue
		}
		if _, ok := rightRow[key]; !ok {
			rightRow[key] = i
		}
	}

	var leftRows, rightRows []int
	for i, key := range left.Labels {
		if key == "" {
			continue
		}
		if j, ok := rightRow[key]; ok {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}

	out := f.Select(leftRows)
	rightSel := other.Select(rightRows)
	for _, c := range rightSel.Cols {
		if c.Name == on {
			continue
		}
		col := c
		// disambiguate clashing column names the way a SQL join would
		if out.Column(col.Name) != nil {
			col = &Column{Name: col.Name + "_right", Kind: col.Kind, Floats: col.Floats, Labels: col.Labels}
		}
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// A Group is a set of row indices sharing the same values in the
// group-by columns.
type Group struct {
	// Keys holds one value per group-by column.
	Keys []string
	Rows []int
}

// Label returns the group keys joined for display.
func (g Group) Label() string {
	return strings.Join(g.Keys, " - ")
}

// GroupRows partitions the frame's rows by the values of the named
// columns. Groups are ordered by first appearance. Rows with a missing
// value in any group column are left out.
func (f *Frame) GroupRows(names []string) ([]Group, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c := f.Column(name)
		if c == nil {
			return nil, fmt.Errorf("no such column: %s", name)
		}
		cols[i] = c
	}

	var groups []Group
	byKey := make(map[string]int)
	for row := 0; row < f.NumRows(); row++ {
		keys := make([]string, len(cols))
		missing := false
		for i, c := range cols {
			if c.Missing(row) {
				missing = true
				break
			}
			keys[i] = fmt.Sprint(c.Value(row))
		}
		if missing {
			continue
		}
		mapKey := strings.Join(keys, "\x00")
		idx, ok := byKey[mapKey]
		if !ok {
			idx = len(groups)
			byKey[mapKey] = idx
			groups = append(groups, Group{Keys: keys})
		}
		groups[idx].Rows = append(groups[idx].Rows, row)
	}
	return groups, nil
}

// DropDuplicateColumns removes columns whose lower-cased name already
// appeared earlier in the frame and returns the names that were dropped.
func (f *Frame) DropDuplicateColumns() []string {
	seen := make(map[string]bool, len(f.Cols))
	var dropped []string
	kept := f.Cols[:0]
	for _, c := range f.Cols {
		lower := strings.ToLower(c.Name)
		if seen[lower] {
			dropped = append(dropped, c.Name)
			continue
		}
		seen[lower] = true
		kept = append(kept, c)
	}
	f.Cols = kept
	f.byName = nil
	f.index()
	return dropped
}
