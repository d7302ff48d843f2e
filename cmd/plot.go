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
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/cache"
	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/plots"
	"github.com/statnl/domainstat/stats"
	"github.com/statnl/domainstat/util"
)

var maxPlots int

// plotCmd represents the plot command
var plotCmd = &cobra.Command{
	Use:   "plot [settings-file]",
	Short: "Render bar charts of the computed statistics",
	Long: `Renders one bar chart per question for every plot configured in the
settings file, using the statistics cached by the stats command.
Reference lines can point at another breakdown, e.g. the national mean
next to a per-sector chart.

The inventory of written images is cached for the report command.`,
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

		start := time.Now()
		allPlots, count, err := makePlots(settings, cacheDir)
		if err != nil {
			return err
		}
		if err := cacheDir.Save(imagesCacheName, allPlots); err != nil {
			return err
		}

		fmt.Printf("Images           [total]                  %d\n", count)
		fmt.Printf("Directory        [path]                   %s\n", settings.General.ImageDirectory)
		fmt.Printf("Duration         [total]                  %s\n", util.FmtDurationHumanReadable(time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().IntVar(&maxPlots, "max-plots", 0, "stop after this number of images, 0 means no limit")
}

// loadStatsCache reads a breakdown's cached statistics, translating a
// missing entry into a hint to run the stats command first.
func loadStatsCache(cacheDir *cache.Dir, fileBase string) (*stats.Result, error) {
	result := &stats.Result{}
	if err := cacheDir.Load(fileBase, result); err != nil {
		if errors.Is(err, cache.ErrMissing) {
			return nil, fmt.Errorf("no cached statistics for %s, run 'domainstat stats' first", fileBase)
		}
		return nil, err
	}
	return result, nil
}

// plotValue reduces the rows of one variable to a single value per
// group: numeric variables keep their weighted mean, dict variables sum
// the shares of their positive options.
func plotValue(rows []stats.Row, group int) float64 {
	value := math.NaN()
	for _, row := range rows {
		if !row.Positive() || group >= len(row.Values) {
			continue
		}
		if math.IsNaN(row.Values[group]) {
			continue
		}
		if math.IsNaN(value) {
			value = 0
		}
		value += row.Values[group]
	}
	return value
}

// makePlots renders all configured plots and returns the image inventory
// (variable -> plot label -> image file) and the number of images written.
func makePlots(settings *config.Settings, cacheDir *cache.Dir) (map[string]map[string]string, int, error) {
	if err := os.MkdirAll(settings.General.ImageDirectory, 0755); err != nil {
		return nil, 0, fmt.Errorf("create image directory: %w", err)
	}

	plotKeys := make([]string, 0, len(settings.Plots))
	for key := range settings.Plots {
		plotKeys = append(plotKeys, key)
	}
	sort.Strings(plotKeys)

	allPlots := make(map[string]map[string]string)
	count := 0

	for _, plotKey := range plotKeys {
		plotProp := settings.Plots[plotKey]
		if !plotProp.Enabled() {
			continue
		}
		result, err := loadStatsCache(cacheDir, plotKey)
		if err != nil {
			return nil, 0, err
		}

		references, err := loadReferences(cacheDir, plotProp)
		if err != nil {
			return nil, 0, err
		}

		label := plotProp.Label
		if label == "" {
			label = plotKey
		}
		groups := displayGroups(settings, plotKey, plotProp, result.Groups)

		progress := newProgress()
		bar := newBar(progress, plotKey, len(settings.VariableList()))
		for _, v := range settings.VariableList() {
			bar.Increment()
			if v.Type == "string" {
				continue
			}
			rows := result.RowsFor(v.Name)
			if len(rows) == 0 {
				continue
			}

			values := make([]float64, len(groups))
			for g := range groups {
				values[g] = plotValue(rows, g)
			}

			imageFile := filepath.Join(settings.General.ImageDirectory,
				v.Name+"_"+plotKey+settings.General.ImageType)
			chart := plots.BarChart{
				Title:    v.Label,
				XLabel:   label,
				Groups:   groups,
				Values:   values,
				RefLines: referenceLines(references, plotProp, v.Name),
			}
			if len(plotProp.FigSize) == 2 {
				chart.WidthCm, chart.HeightCm = plotProp.FigSize[0], plotProp.FigSize[1]
			}
			if err := plots.Render(imageFile, chart); err != nil {
				slog.Warn("skipping chart", "variable", v.Name, "error", err)
				continue
			}

			if allPlots[v.Name] == nil {
				allPlots[v.Name] = make(map[string]string)
			}
			allPlots[v.Name][label] = imageFile
			count++
			if maxPlots > 0 && count >= maxPlots {
				slog.Info("maximum number of plots reached", "max", maxPlots)
				bar.Abort(true)
				progress.Wait()
				return allPlots, count, nil
			}
		}
		progress.Wait()
	}
	return allPlots, count, nil
}

// loadReferences loads the cached statistics every reference line of a
// plot points at, keyed by file base.
func loadReferences(cacheDir *cache.Dir, plotProp config.Plot) (map[string]*stats.Result, error) {
	out := make(map[string]*stats.Result)
	for refKey := range plotProp.ReferenceLines {
		result, err := loadStatsCache(cacheDir, refKey)
		if err != nil {
			return nil, err
		}
		out[refKey] = result
	}
	return out, nil
}

// referenceLines reduces every reference breakdown to one line: the
// variable's value in the reference's first group, which for a national
// total is the only group there is.
func referenceLines(references map[string]*stats.Result, plotProp config.Plot, variable string) []plots.RefLine {
	refKeys := make([]string, 0, len(references))
	for key := range references {
		refKeys = append(refKeys, key)
	}
	sort.Strings(refKeys)

	var lines []plots.RefLine
	for _, refKey := range refKeys {
		label := plotProp.ReferenceLines[refKey].Label
		if label == "" {
			label = refKey
		}
		value := plotValue(references[refKey].RowsFor(variable), 0)
		if !math.IsNaN(value) {
			lines = append(lines, plots.RefLine{Label: label, Value: value})
		}
	}
	return lines
}

// displayGroups maps the raw group keys onto their configured display
// labels when the plot asks for it.
func displayGroups(settings *config.Settings, plotKey string, plotProp config.Plot, groups []string) []string {
	if !plotProp.UseBreakdownKeys {
		return groups
	}
	labels := settings.BreakdownLabels[plotKey]
	out := make([]string, len(groups))
	for i, group := range groups {
		if label, ok := labels[group]; ok {
			out[i] = label
		} else {
			out[i] = group
		}
	}
	return out
}
