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
)

func reportTestSettings() *config.Settings {
	settings, err := config.Parse([]byte(`
weight: weight
general:
  tex_prepend_path: "../analysis"
modules:
  security:
    label: Security measures
variables:
  security:
    dnssec:
      label: DNSSEC
    tls_available:
      label: TLS available
  access:
    ipv6:
      label: IPv6 reachable
`))
	if err != nil {
		panic(err)
	}
	return settings
}

func TestBuildOverview(t *testing.T) {
	settings := reportTestSettings()
	allPlots := map[string]map[string]string{
		"dnssec": {
			"Sector":       "images/dnssec_sbi.pdf",
			"Company size": "images/dnssec_gk.pdf",
		},
		"ipv6": {
			"Sector": "images/ipv6_sbi.pdf",
		},
	}

	overview := buildOverview(settings, allPlots)

	require.Len(t, overview.Modules, 2)

	access := overview.Modules[0]
	assert.Equal(t, "access", access.Name)
	assert.Equal(t, "access", access.Label)
	require.Len(t, access.Variables, 1)
	assert.Equal(t, "IPv6 reachable", access.Variables[0].Label)

	security := overview.Modules[1]
	assert.Equal(t, "Security measures", security.Label)
	require.Len(t, security.Variables, 1)
	dnssec := security.Variables[0]
	assert.Equal(t, "DNSSEC", dnssec.Label)
	require.Len(t, dnssec.Images, 2)
	assert.Equal(t, "Company size", dnssec.Images[0].Label)
	assert.Equal(t, "../analysis/images/dnssec_gk.pdf", dnssec.Images[0].Path)
	assert.Equal(t, "../analysis/images/dnssec_sbi.pdf", dnssec.Images[1].Path)
}

func TestBuildOverview_variablesWithoutImagesLeftOut(t *testing.T) {
	overview := buildOverview(reportTestSettings(), map[string]map[string]string{})

	assert.Empty(t, overview.Modules)
}
