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

package internetnl

import (
	"sort"

	"github.com/statnl/domainstat/frame"
)

// BatchRequest describes a batch measurement as the API reports it.
type BatchRequest struct {
	RequestID    string `json:"request_id"`
	Name         string `json:"name"`
	RequestType  string `json:"request_type"`
	Status       string `json:"status"`
	SubmitDate   string `json:"submit_date"`
	FinishedDate string `json:"finished_date"`
}

// Done reports whether the measurement reached a terminal state.
func (r BatchRequest) Done() bool {
	switch r.Status {
	case "done", "generating", "error", "cancelled":
		return true
	}
	return false
}

// TestResult is the outcome of a single test for one domain.
type TestResult struct {
	Status  string `json:"status"`
	Verdict string `json:"verdict"`
}

// CategoryResult is the aggregated outcome of a test category.
type CategoryResult struct {
	Status  string `json:"status"`
	Verdict string `json:"verdict"`
}

// DomainResult holds everything the API reports about one domain.
type DomainResult struct {
	Status string `json:"status"`
	Report struct {
		URL string `json:"url"`
	} `json:"report"`
	Scoring struct {
		Percentage float64 `json:"percentage"`
	} `json:"scoring"`
	Results struct {
		Categories map[string]CategoryResult `json:"categories"`
		Tests      map[string]TestResult     `json:"tests"`
	} `json:"results"`
}

// ScanTables are the per-domain result frames in the table layout the
// merge stage reads: report, scoring, status and results, all keyed by
// the same index column.
type ScanTables struct {
	Report  *frame.Frame
	Scoring *frame.Frame
	Status  *frame.Frame
	Results *frame.Frame
}

// Flatten turns the nested API results into the four scan tables. Rows
// are ordered by domain, test columns by test name, so repeated runs
// produce identical tables.
func Flatten(results BatchResults, indexCol string) ScanTables {
	domainNames := make([]string, 0, len(results.Domains))
	for name := range results.Domains {
		domainNames = append(domainNames, name)
	}
	sort.Strings(domainNames)

	testNames := map[string]bool{}
	categoryNames := map[string]bool{}
	for _, d := range results.Domains {
		for name := range d.Results.Tests {
			testNames[name] = true
		}
		for name := range d.Results.Categories {
			categoryNames[name] = true
		}
	}
	tests := sortedKeys(testNames)
	categories := sortedKeys(categoryNames)

	reportURLs := make([]string, len(domainNames))
	percentages := make([]float64, len(domainNames))
	statuses := make([]string, len(domainNames))
	for i, name := range domainNames {
		d := results.Domains[name]
		reportURLs[i] = d.Report.URL
		percentages[i] = d.Scoring.Percentage
		statuses[i] = d.Status
	}

	tables := ScanTables{
		Report:  frame.New(),
		Scoring: frame.New(),
		Status:  frame.New(),
		Results: frame.New(),
	}
	mustAddLabels(tables.Report, indexCol, domainNames)
	mustAddLabels(tables.Report, "report_url", reportURLs)

	mustAddLabels(tables.Scoring, indexCol, domainNames)
	_ = tables.Scoring.AddFloats("percentage", frame.Percentage, percentages)

	mustAddLabels(tables.Status, indexCol, domainNames)
	mustAddLabels(tables.Status, "status", statuses)

	mustAddLabels(tables.Results, indexCol, domainNames)
	for _, test := range tests {
		values := make([]string, len(domainNames))
		for i, name := range domainNames {
			if tr, ok := results.Domains[name].Results.Tests[test]; ok {
				values[i] = tr.Status
			}
		}
		mustAddLabels(tables.Results, test, values)
	}
	for _, category := range categories {
		values := make([]string, len(domainNames))
		for i, name := range domainNames {
			if cr, ok := results.Domains[name].Results.Categories[category]; ok {
				values[i] = cr.Status
			}
		}
		mustAddLabels(tables.Results, category, values)
	}
	return tables
}

// BatchResults is the full response of the results endpoint.
type BatchResults struct {
	Request BatchRequest            `json:"request"`
	Domains map[string]DomainResult `json:"domains"`
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// mustAddLabels adds a label column to a freshly built frame. The frames
// here are constructed column by column with equal lengths and unique
// names, so an error cannot occur.
func mustAddLabels(f *frame.Frame, name string, values []string) {
	if err := f.AddLabels(name, values); err != nil {
		panic(err)
	}
}
