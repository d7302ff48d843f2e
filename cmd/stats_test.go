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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/stats"
)

func TestStatsVariables_stringVariablesLeftOut(t *testing.T) {
	settings, err := config.Parse([]byte(`
weight: weight
variables:
  security:
    dnssec: {}
    report_url:
      type: string
`))
	require.NoError(t, err)

	vars := statsVariables(settings)

	require.Len(t, vars, 1)
	assert.Equal(t, "dnssec", vars[0].Name)
	assert.Equal(t, "bool", vars[0].Type)
	assert.Equal(t, "weight", vars[0].Weight)
}

func TestStatsFrame(t *testing.T) {
	result := &stats.Result{
		FileBase: "sbi",
		Groups:   []string{"A", "B"},
		Rows: []stats.Row{
			{Module: "security", Variable: "dnssec", Values: []float64{0.5, 0.75}},
			{Module: "security", Variable: "tls", Option: "passed", Values: []float64{0.25, 1}},
		},
	}

	f := statsFrame(result)

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{"module", "variable", "option", "A", "B"}, f.Names())
	assert.Equal(t, []float64{0.5, 0.25}, f.Column("A").Floats)
	assert.Equal(t, []float64{0.75, 1}, f.Column("B").Floats)
}

func TestStatsFrame_duplicateGroupNamesSuffixed(t *testing.T) {
	result := &stats.Result{
		Groups: []string{"A", "A"},
		Rows:   []stats.Row{{Variable: "dnssec", Values: []float64{1, 2}}},
	}

	f := statsFrame(result)

	assert.Equal(t, []string{"module", "variable", "option", "A", "A_1"}, f.Names())
}
