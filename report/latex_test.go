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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOverview(t *testing.T) {
	overview := Overview{
		Modules: []ModuleSection{
			{
				Name:  "dnssec",
				Label: "DNSSEC",
				Variables: []VariableSection{
					{
						Name:  "dnssec_exists",
						Label: "DNSSEC present",
						Images: []Image{
							{Label: "per size class", Path: "images/dnssec_exists_per_gk.pdf"},
							{Label: "per sector", Path: "images/dnssec_exists_per_sbi.pdf"},
						},
					},
				},
			},
			{
				Name:      "tls",
				Label:     "TLS & HTTPS",
				Variables: []VariableSection{{Name: "web_tls", Label: "TLS_grade"}},
			},
		},
	}

	var builder strings.Builder
	require.NoError(t, WriteOverview(&builder, overview))
	doc := builder.String()

	assert.Contains(t, doc, "% Overview of internet.nl statistics")
	assert.Contains(t, doc, `\section{DNSSEC}`)
	assert.Contains(t, doc, `\subsection{DNSSEC present}`)
	assert.Contains(t, doc, `\includegraphics{images/dnssec_exists_per_gk.pdf}`)
	assert.Contains(t, doc, `\includegraphics{images/dnssec_exists_per_sbi.pdf}`)
	assert.Contains(t, doc, `\caption{per size class}`)

	// special characters in labels are escaped
	assert.Contains(t, doc, `\section{TLS \& HTTPS}`)
	assert.Contains(t, doc, `\subsection{TLS\_grade}`)
}

func TestWriteOverview_customTitle(t *testing.T) {
	var builder strings.Builder
	require.NoError(t, WriteOverview(&builder, Overview{Title: "My title"}))
	assert.Contains(t, builder.String(), "% My title")
}
