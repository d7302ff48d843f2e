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

package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomain(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple domain", "example.com", "example"},
		{"Subdomain", "www.example.com", "example"},
		{"Full URL", "https://www.example.com/path?q=1", "example"},
		{"Scheme-less with path", "example.com/some/path", "example"},
		{"Uppercase", "WWW.EXAMPLE.COM", "example"},
		{"Multi-label suffix", "www.example.co.uk", "example"},
		{"Dutch domain", "https://iets.voorbeeld.nl", "voorbeeld"},
		{"Port", "example.nl:443", "example"},
		{"Trailing dot", "example.nl.", "example"},
		{"Leading dot", ".example.nl", "example"},
		{"Wildcard", "*.example.nl", "example"},
		{"Userinfo", "user:pass@example.nl", "example"},
		{"Userinfo in URL", "https://user@example.nl", "example"},
		{"Bare suffix", "co.uk", ""},
		{"Single label", "localhost", ""},
		{"Empty", "", ""},
		{"Spaces only", "   ", ""},
		{"Dots only", "...", ""},
		{"Internal space", "example test.com", ""},
		{"IPv6", "::1", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Domain(tc.input))
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	p := Extract("https://scan.internet.nl")
	assert.Equal(t, "scan", p.Subdomain)
	assert.Equal(t, "internet", p.Domain)
	assert.Equal(t, "nl", p.Suffix)
	assert.Equal(t, "internet.nl", p.RegisteredDomain())

	p = Extract("a.b.example.co.uk")
	assert.Equal(t, "a.b", p.Subdomain)
	assert.Equal(t, "example", p.Domain)
	assert.Equal(t, "co.uk", p.Suffix)
}

func TestRegisteredDomain_missingParts(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", Parts{}.RegisteredDomain())
	assert.Equal(t, "", Parts{Domain: "example"}.RegisteredDomain())
}
