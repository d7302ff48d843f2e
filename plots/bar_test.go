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

package plots

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	chart := BarChart{
		Title:  "DNSSEC present",
		XLabel: "share",
		Groups: []string{"small", "medium", "large"},
		Values: []float64{0.4, math.NaN(), 0.8},
		RefLines: []RefLine{
			{Label: "all firms", Value: 0.6},
			{Value: math.NaN()},
		},
	}
	require.NoError(t, Render(path, chart))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRender_errors(t *testing.T) {
	err := Render("x.png", BarChart{Groups: []string{"a"}, Values: []float64{1, 2}})
	assert.ErrorContains(t, err, "1 groups but 2 values")

	err = Render("x.png", BarChart{Groups: []string{"a"}, Values: []float64{math.NaN()}})
	assert.ErrorContains(t, err, "no plottable values")
}
