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

// Package config loads the YAML settings file that drives an analysis
// run: where the databases live, which variables exist, which breakdowns
// to compute and how the reports should look.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// General holds run-wide settings.
type General struct {
	WorkingDirectory string   `yaml:"working_directory"`
	CacheDirectory   string   `yaml:"cache_directory"`
	ImageDirectory   string   `yaml:"image_directory"`
	TexPrependPath   string   `yaml:"tex_prepend_path"`
	Output           string   `yaml:"output"`
	RecordsDatabase  string   `yaml:"records_database"`
	RecordsTables    []string `yaml:"records_tables"`
	ScanDatabase     string   `yaml:"scan_database"`
	ScanTables       []string `yaml:"scan_tables"`
	ScanIndex        string   `yaml:"scan_index"`
	URLKey           string   `yaml:"url_key"`
	IDKey            string   `yaml:"id_key"`
	NDigits          int      `yaml:"n_digits"`
	ImageType        string   `yaml:"image_type"`
}

// Breakdown describes one statistics output: the columns to group by and
// a display label.
type Breakdown struct {
	GroupBy []string `yaml:"groupby"`
	Label   string   `yaml:"label"`
}

// Variable describes one scan metric.
type Variable struct {
	// Module and Name are filled from the position in the settings tree.
	Module string `yaml:"-"`
	Name   string `yaml:"-"`

	Type          string             `yaml:"type"`
	Label         string             `yaml:"label"`
	Include       *bool              `yaml:"include"`
	Filter        string             `yaml:"filter"`
	Weight        string             `yaml:"weight"`
	Options       []string           `yaml:"options"`
	TranslateOpts map[string]float64 `yaml:"translateopts"`
}

// Included reports whether the variable takes part in the analysis.
// Variables are included unless switched off.
func (v Variable) Included() bool {
	return v.Include == nil || *v.Include
}

// Module describes one group of variables.
type Module struct {
	Label   string `yaml:"label"`
	Include *bool  `yaml:"include"`
}

// Included reports whether the module takes part in the analysis.
// Modules are included unless switched off.
func (m Module) Included() bool {
	return m.Include == nil || *m.Include
}

// ReferenceLine points at another breakdown whose statistics are drawn
// as reference lines in a plot.
type ReferenceLine struct {
	Label string `yaml:"label"`
}

// Plot describes one plot output.
type Plot struct {
	Label            string                   `yaml:"label"`
	DoIt             *bool                    `yaml:"do_it"`
	FigSize          []float64                `yaml:"figsize"`
	ReferenceLines   map[string]ReferenceLine `yaml:"reference_lines"`
	UseBreakdownKeys bool                     `yaml:"use_breakdown_keys"`
}

// Enabled reports whether the plot should be produced.
func (p Plot) Enabled() bool {
	return p.DoIt == nil || *p.DoIt
}

// SheetRename is a regular-expression rename applied to Excel sheet names.
type SheetRename struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// Settings is the complete parsed settings file.
type Settings struct {
	General         General                        `yaml:"general"`
	Statistics      map[string]Breakdown           `yaml:"statistics"`
	Variables       map[string]map[string]Variable `yaml:"variables"`
	Modules         map[string]Module              `yaml:"modules"`
	Translations    map[string]map[string]float64  `yaml:"translations"`
	DefaultWeight   string                         `yaml:"weight"`
	Plots           map[string]Plot                `yaml:"plots"`
	BreakdownLabels map[string]map[string]string   `yaml:"breakdown_labels"`
	SheetRenames    map[string]SheetRename         `yaml:"sheet_renames"`
}

// Load reads and parses the settings file at path and imposes the
// variable defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	return Parse(data)
}

// Parse parses settings from raw YAML and imposes the variable defaults.
func Parse(data []byte) (*Settings, error) {
	settings := &Settings{}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	settings.imposeDefaults()
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) imposeDefaults() {
	g := &s.General
	if g.Output == "" {
		g.Output = "internet_nl_stats"
	}
	if g.CacheDirectory == "" {
		g.CacheDirectory = "cache"
	}
	if g.ImageDirectory == "" {
		g.ImageDirectory = "images"
	}
	if g.RecordsDatabase == "" {
		g.RecordsDatabase = "records_cache.sqlite"
	}
	if len(g.RecordsTables) == 0 {
		g.RecordsTables = []string{"records_df_2", "info_records_df"}
	}
	if g.ScanDatabase == "" {
		g.ScanDatabase = "internet_nl.sqlite"
	}
	if len(g.ScanTables) == 0 {
		g.ScanTables = []string{"report", "scoring", "status", "results"}
	}
	if g.ScanIndex == "" {
		g.ScanIndex = "index"
	}
	if g.URLKey == "" {
		g.URLKey = "website_url"
	}
	if g.IDKey == "" {
		g.IDKey = "be_id"
	}
	if g.NDigits == 0 {
		g.NDigits = 3
	}
	if g.ImageType == "" {
		g.ImageType = ".pdf"
	}

	for moduleName, vars := range s.Variables {
		for varName, v := range vars {
			v.Module = moduleName
			v.Name = varName
			if v.Type == "" {
				v.Type = "bool"
			}
			if v.Weight == "" {
				v.Weight = s.DefaultWeight
			}
			if v.Label == "" {
				v.Label = varName
			}
			vars[varName] = v
		}
	}
}

func (s *Settings) validate() error {
	if s.DefaultWeight == "" {
		return fmt.Errorf("settings: weight is required")
	}
	for fileBase, breakdown := range s.Statistics {
		if len(breakdown.GroupBy) == 0 {
			return fmt.Errorf("settings: statistics %s: groupby is empty", fileBase)
		}
	}
	for moduleName, vars := range s.Variables {
		for varName, v := range vars {
			switch v.Type {
			case "bool", "percentage", "float", "dict", "string":
			default:
				return fmt.Errorf("settings: variable %s/%s: unknown type %q", moduleName, varName, v.Type)
			}
		}
	}
	return nil
}

// ModuleIncluded reports whether the named module takes part in the
// analysis. Modules without settings are included.
func (s *Settings) ModuleIncluded(name string) bool {
	m, ok := s.Modules[name]
	if !ok {
		return true
	}
	return m.Included()
}

// VariableList returns all included variables of included modules,
// ordered by module name and variable name.
func (s *Settings) VariableList() []Variable {
	var out []Variable
	for moduleName, vars := range s.Variables {
		if !s.ModuleIncluded(moduleName) {
			continue
		}
		for _, v := range vars {
			if !v.Included() {
				continue
			}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Variable looks up a variable by name across all modules.
func (s *Settings) Variable(name string) (Variable, bool) {
	for _, vars := range s.Variables {
		if v, ok := vars[name]; ok {
			return v, true
		}
	}
	return Variable{}, false
}

// DictVariables returns the names of all variables of type dict.
func (s *Settings) DictVariables() map[string]bool {
	out := make(map[string]bool)
	for _, vars := range s.Variables {
		for name, v := range vars {
			if v.Type == "dict" {
				out[name] = true
			}
		}
	}
	return out
}

// FileBases returns the statistics file bases in sorted order.
func (s *Settings) FileBases() []string {
	out := make([]string, 0, len(s.Statistics))
	for fileBase := range s.Statistics {
		out = append(out, fileBase)
	}
	sort.Strings(out)
	return out
}
