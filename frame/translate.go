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

package frame

import "math"

// uniqueLabels returns the distinct non-missing values of a label column.
func uniqueLabels(c *Column) map[string]bool {
	u := make(map[string]bool)
	for _, s := range c.Labels {
		if s != "" {
			u[s] = true
		}
	}
	return u
}

// intersects reports whether any key of mapping occurs in values.
func intersects(mapping map[string]float64, values map[string]bool) bool {
	for k := range mapping {
		if values[k] {
			return true
		}
	}
	return false
}

// mapToFloats converts a label column in place to a numeric column of the
// given kind using mapping. Values without a mapping become NaN.
func mapToFloats(c *Column, kind Kind, mapping map[string]float64) {
	floats := make([]float64, len(c.Labels))
	for i, s := range c.Labels {
		if v, ok := mapping[s]; ok {
			floats[i] = v
		} else {
			floats[i] = math.NaN()
		}
	}
	c.Kind = kind
	c.Floats = floats
	c.Labels = nil
}

// TranslateNearBooleans converts label columns that carry yes/no style
// answers to numeric columns. A column qualifies when it is not listed in
// skip (the configured dict variables), has at most three distinct values
// and intersects the keys of one of the translation tables. Values
// outside the matching table become NaN.
func (f *Frame) TranslateNearBooleans(translations map[string]map[string]float64, skip map[string]bool) {
	for _, c := range f.Cols {
		if c.Kind != String || skip[c.Name] {
			continue
		}
		unique := uniqueLabels(c)
		if len(unique) == 0 || len(unique) > 3 {
			continue
		}
		for _, mapping := range translations {
			if intersects(mapping, unique) {
				mapToFloats(c, Bool, mapping)
				break
			}
		}
	}
}

// ApplyValueMap applies a per-variable value translation to the named
// column. The translation only fires when at least one of its keys is
// present in the column, so an already translated column is left alone.
func (f *Frame) ApplyValueMap(name string, mapping map[string]float64) {
	c := f.Column(name)
	if c == nil || c.Kind.Numeric() || len(mapping) == 0 {
		return
	}
	if !intersects(mapping, uniqueLabels(c)) {
		return
	}
	mapToFloats(c, Bool, mapping)
}

// Coerce converts the named column to the given kind: numeric kinds parse
// label values (unparseable values become NaN), Category re-tags a label
// column. Coercing a missing column is a no-op.
func (f *Frame) Coerce(name string, kind Kind) {
	c := f.Column(name)
	if c == nil || c.Kind == kind {
		return
	}
	if kind.Numeric() {
		c.Floats = c.AsFloats()
		c.Labels = nil
		c.Kind = kind
		return
	}
	if kind == Category && c.Kind == String {
		c.Kind = Category
	}
}
