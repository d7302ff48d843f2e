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

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f := New()
	require.NoError(t, f.AddLabels("be_id", []string{"1", "2", "2", "3", "4"}))
	require.NoError(t, f.AddLabels("domain", []string{"aap", "noot", "noot", "mies", ""}))
	require.NoError(t, f.AddLabels("gk", []string{"small", "small", "small", "large", "large"}))
	require.NoError(t, f.AddFloats("weight", Float, []float64{1, 2, 2, math.NaN(), 4}))
	return f
}

func TestFrame_AddColumn(t *testing.T) {
	f := testFrame(t)
	assert.Equal(t, 5, f.NumRows())
	assert.Equal(t, 4, f.NumCols())
	assert.Equal(t, []string{"be_id", "domain", "gk", "weight"}, f.Names())

	err := f.AddLabels("be_id", []string{"x", "x", "x", "x", "x"})
	assert.ErrorContains(t, err, "duplicate column")

	err = f.AddLabels("short", []string{"x"})
	assert.ErrorContains(t, err, "has 1 rows")
}

func TestFrame_DropMissing(t *testing.T) {
	f := testFrame(t)
	out, err := f.DropMissing("weight")
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []string{"1", "2", "2", "4"}, out.Column("be_id").Labels)

	_, err = f.DropMissing("nope")
	assert.ErrorContains(t, err, "no such column")
}

func TestFrame_Dedupe(t *testing.T) {
	f := testFrame(t)
	out, err := f.Dedupe("be_id")
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []string{"1", "2", "3", "4"}, out.Column("be_id").Labels)
	// the first of the duplicated rows survives
	assert.Equal(t, 2.0, out.Column("weight").Floats[1])
}

func TestFrame_Join(t *testing.T) {
	records := New()
	require.NoError(t, records.AddLabels("domain", []string{"aap", "noot", "mies"}))
	require.NoError(t, records.AddFloats("weight", Float, []float64{1, 2, 3}))

	scan := New()
	require.NoError(t, scan.AddLabels("domain", []string{"noot", "aap", "wim", "aap"}))
	require.NoError(t, scan.AddFloats("score", Percentage, []float64{50, 80, 10, 90}))

	out, err := records.Join(scan, "domain")
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"aap", "noot"}, out.Column("domain").Labels)
	// the first matching scan row wins
	assert.Equal(t, []float64{80, 50}, out.Column("score").Floats)
	assert.Equal(t, []float64{1, 2}, out.Column("weight").Floats)
}

func TestFrame_Join_clashingColumns(t *testing.T) {
	left := New()
	require.NoError(t, left.AddLabels("domain", []string{"aap"}))
	require.NoError(t, left.AddLabels("status", []string{"l"}))

	right := New()
	require.NoError(t, right.AddLabels("domain", []string{"aap"}))
	require.NoError(t, right.AddLabels("status", []string{"r"}))

	out, err := left.Join(right, "domain")
	require.NoError(t, err)
	assert.Equal(t, []string{"l"}, out.Column("status").Labels)
	assert.Equal(t, []string{"r"}, out.Column("status_right").Labels)
}

func TestFrame_GroupRows(t *testing.T) {
	f := testFrame(t)
	groups, err := f.GroupRows([]string{"gk"})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"small"}, groups[0].Keys)
	assert.Equal(t, []int{0, 1, 2}, groups[0].Rows)
	assert.Equal(t, []string{"large"}, groups[1].Keys)
	assert.Equal(t, []int{3, 4}, groups[1].Rows)
	assert.Equal(t, "small", groups[0].Label())
}

func TestFrame_GroupRows_skipsMissing(t *testing.T) {
	f := testFrame(t)
	groups, err := f.GroupRows([]string{"domain"})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.NotEqual(t, "", g.Keys[0])
	}
}

func TestFrame_DropDuplicateColumns(t *testing.T) {
	f := New()
	require.NoError(t, f.AddLabels("Domain", []string{"aap"}))
	require.NoError(t, f.AddLabels("domain", []string{"noot"}))
	require.NoError(t, f.AddLabels("other", []string{"mies"}))

	dropped := f.DropDuplicateColumns()
	assert.Equal(t, []string{"domain"}, dropped)
	assert.Equal(t, []string{"Domain", "other"}, f.Names())
}

func TestFrame_gobRoundTrip(t *testing.T) {
	f := testFrame(t)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(f))

	restored := &Frame{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	assert.Equal(t, f.Names(), restored.Names())
	assert.Equal(t, f.Column("gk").Labels, restored.Column("gk").Labels)
}

func TestColumn_AsFloats(t *testing.T) {
	c := &Column{Name: "v", Kind: String, Labels: []string{"1.5", " 2 ", "x", ""}}
	vals := c.AsFloats()
	assert.Equal(t, 1.5, vals[0])
	assert.Equal(t, 2.0, vals[1])
	assert.True(t, math.IsNaN(vals[2]))
	assert.True(t, math.IsNaN(vals[3]))
}

func TestFrame_TranslateNearBooleans(t *testing.T) {
	f := New()
	require.NoError(t, f.AddLabels("https", []string{"yes", "no", "yes", "unknown"}))
	require.NoError(t, f.AddLabels("category", []string{"yes", "no", "yes", "no"}))
	require.NoError(t, f.AddLabels("verdict", []string{"a", "b", "c", "d"}))

	translations := map[string]map[string]float64{
		"yesno": {"yes": 1, "no": 0},
	}
	f.TranslateNearBooleans(translations, map[string]bool{"category": true})

	https := f.Column("https")
	assert.Equal(t, Bool, https.Kind)
	assert.Equal(t, 1.0, https.Floats[0])
	assert.Equal(t, 0.0, https.Floats[1])
	assert.True(t, math.IsNaN(https.Floats[3]))

	// dict columns keep their labels
	assert.Equal(t, String, f.Column("category").Kind)
	// more than three distinct values, left alone
	assert.Equal(t, String, f.Column("verdict").Kind)
}

func TestFrame_ApplyValueMap(t *testing.T) {
	f := New()
	require.NoError(t, f.AddLabels("beleid", []string{"Ja", "Nee", "Ja"}))
	require.NoError(t, f.AddLabels("other", []string{"x", "y", "z"}))

	f.ApplyValueMap("beleid", map[string]float64{"Ja": 1, "Nee": 0})
	assert.Equal(t, []float64{1, 0, 1}, f.Column("beleid").Floats)

	// no intersection, nothing happens
	f.ApplyValueMap("other", map[string]float64{"Ja": 1})
	assert.Equal(t, String, f.Column("other").Kind)
}

func TestFrame_Coerce(t *testing.T) {
	f := New()
	require.NoError(t, f.AddLabels("score", []string{"48", "100", "x"}))
	f.Coerce("score", Percentage)

	c := f.Column("score")
	assert.Equal(t, Percentage, c.Kind)
	assert.Equal(t, 48.0, c.Floats[0])
	assert.True(t, math.IsNaN(c.Floats[2]))
}
