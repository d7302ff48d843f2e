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
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/cache"
	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/report"
	"github.com/statnl/domainstat/util"
)

var reportTitle string

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [settings-file]",
	Short: "Write a LaTeX overview of the rendered charts",
	Long: `Writes a LaTeX document with one section per module and one
subsection per question, including every chart the plot command rendered.
The document is meant to be \input into a larger report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(args[0])
		if err != nil {
			return err
		}
		cacheDir, err := openCache(settings)
		if err != nil {
			return err
		}

		allPlots := make(map[string]map[string]string)
		if err := cacheDir.Load(imagesCacheName, &allPlots); err != nil {
			if errors.Is(err, cache.ErrMissing) {
				return fmt.Errorf("no cached image inventory, run 'domainstat plot' first")
			}
			return err
		}

		overview := buildOverview(settings, allPlots)
		overview.Title = reportTitle

		texFile := settings.General.Output + ".tex"
		file, err := util.CreateOutputFile(texFile)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := report.WriteOverview(file, overview); err != nil {
			return err
		}

		fmt.Printf("Modules          [total]                  %d\n", len(overview.Modules))
		fmt.Printf("Document         [path]                   %s\n", texFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "document title, defaults to a generic overview title")
}

// buildOverview arranges the image inventory by module and variable in
// the order of the settings file. Variables without images are left out,
// so are modules that end up empty.
func buildOverview(settings *config.Settings, allPlots map[string]map[string]string) report.Overview {
	byModule := make(map[string][]report.VariableSection)
	for _, v := range settings.VariableList() {
		images, ok := allPlots[v.Name]
		if !ok {
			continue
		}
		labels := make([]string, 0, len(images))
		for label := range images {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		section := report.VariableSection{Name: v.Name, Label: v.Label}
		for _, label := range labels {
			section.Images = append(section.Images, report.Image{
				Label: label,
				Path:  path.Join(settings.General.TexPrependPath, images[label]),
			})
		}
		byModule[v.Module] = append(byModule[v.Module], section)
	}

	moduleNames := make([]string, 0, len(byModule))
	for name := range byModule {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)

	var overview report.Overview
	for _, name := range moduleNames {
		label := name
		if m, ok := settings.Modules[name]; ok && m.Label != "" {
			label = m.Label
		}
		overview.Modules = append(overview.Modules, report.ModuleSection{
			Name:      name,
			Label:     label,
			Variables: byModule[name],
		})
	}
	return overview
}
