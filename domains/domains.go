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

// Package domains reduces URLs and host names to their registered domain.
// The registered domain is the label directly left of the public suffix,
// so "https://www.example.co.uk/path" reduces to "example".
package domains

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Parts holds the components of a parsed host name.
type Parts struct {
	// Subdomain is everything left of the registered domain, may be empty.
	Subdomain string
	// Domain is the registered domain label, e.g. "example" for
	// "www.example.co.uk".
	Domain string
	// Suffix is the public suffix, e.g. "co.uk".
	Suffix string
}

// RegisteredDomain returns Domain plus Suffix, or an empty string when
// either part is missing.
func (p Parts) RegisteredDomain() string {
	if p.Domain == "" || p.Suffix == "" {
		return ""
	}
	return p.Domain + "." + p.Suffix
}

// Extract parses rawURL, which may be a full URL, a bare host name or a
// host:port pair, and splits its host into subdomain, registered domain
// and public suffix. Input that carries no usable host yields zero Parts.
func Extract(rawURL string) Parts {
	host := normalizeHost(rawURL)
	if host == "" {
		return Parts{}
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	if suffix == "" || suffix == host {
		return Parts{}
	}

	rest := strings.TrimSuffix(host, "."+suffix)
	if rest == host || rest == "" {
		return Parts{}
	}

	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		return Parts{Subdomain: rest[:i], Domain: rest[i+1:], Suffix: suffix}
	}
	return Parts{Domain: rest, Suffix: suffix}
}

// Domain returns the registered domain label of rawURL in lower case.
// Unparseable input yields an empty string.
func Domain(rawURL string) string {
	return Extract(rawURL).Domain
}

// normalizeHost extracts the bare host from rawURL: scheme, path, port,
// userinfo, wildcard labels and surrounding dots are removed and the
// result is lower cased.
func normalizeHost(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			s = u.Hostname()
		} else if i := strings.Index(s, "://"); i >= 0 {
			s = s[i+3:]
		}
	}

	// strip path, query and userinfo remnants for scheme-less input
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	// an IPv6 literal never carries a registered domain
	if strings.HasPrefix(s, "[") || strings.Count(s, ":") > 1 {
		return ""
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}

	s = strings.ToLower(strings.Trim(s, "."))
	s = strings.TrimPrefix(s, "*.")
	for strings.HasPrefix(s, ".") {
		s = s[1:]
	}
	if s == "" || strings.ContainsAny(s, " \t") {
		return ""
	}
	return s
}
