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
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/cache"
	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/frame"
	"github.com/statnl/domainstat/report"
	"github.com/statnl/domainstat/stats"
	"github.com/statnl/domainstat/store"
	"github.com/statnl/domainstat/util"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [settings-file]",
	Short: "Compute weighted statistics per breakdown",
	Long: `Computes the weighted statistics of every variable for every breakdown
in the settings file. Results are cached per breakdown and written as
one sheet per breakdown to an Excel workbook and as one table per
breakdown to a SQLite output database.`,
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
		dataset, err := mergeDataset(settings, cacheDir, resetLevel)
		if err != nil {
			return err
		}

		vars := statsVariables(settings)
		results, err := computeAllStats(settings, cacheDir, dataset, vars)
		if err != nil {
			return err
		}

		if err := writeStatsOutput(settings, results); err != nil {
			return err
		}

		fmt.Printf("Breakdowns       [total]                  %d\n", len(results))
		fmt.Printf("Variables        [total]                  %d\n", len(vars))
		fmt.Printf("Workbook         [file]                   %s.xlsx\n", settings.General.Output)
		fmt.Printf("Database         [file]                   %s.sqlite\n", settings.General.Output)
		fmt.Printf("Duration         [total]                  %s\n", util.FmtDurationHumanReadable(time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsVariables maps the configured variables onto the statistics
// engine's variable descriptions.
func statsVariables(settings *config.Settings) []stats.Variable {
	configured := settings.VariableList()
	out := make([]stats.Variable, 0, len(configured))
	for _, v := range configured {
		if v.Type == "string" {
			continue
		}
		out = append(out, stats.Variable{
			Module:  v.Module,
			Name:    v.Name,
			Label:   v.Label,
			Type:    v.Type,
			Weight:  v.Weight,
			Filter:  v.Filter,
			Options: v.Options,
		})
	}
	return out
}

// computeAllStats computes (or loads from cache) the statistics of every
// breakdown, in file-base order.
func computeAllStats(settings *config.Settings, cacheDir *cache.Dir, dataset *frame.Frame, vars []stats.Variable) ([]*stats.Result, error) {
	var results []*stats.Result
	for _, fileBase := range settings.FileBases() {
		breakdown := settings.Statistics[fileBase]

		if resetLevel == cache.ResetNone && cacheDir.Exists(fileBase) {
			slog.Info("reading statistics from cache", "breakdown", fileBase)
			result := &stats.Result{}
			if err := cacheDir.Load(fileBase, result); err != nil {
				return nil, err
			}
			results = append(results, result)
			continue
		}

		slog.Info("computing statistics", "breakdown", fileBase, "groupby", breakdown.GroupBy)
		progress := newProgress()
		bar := newBar(progress, fileBase, len(vars))
		result, err := stats.Compute(dataset, fileBase, breakdown.GroupBy, vars, func() { bar.Increment() })
		progress.Wait()
		if err != nil {
			return nil, err
		}

		if err := cacheDir.Save(fileBase, result); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// writeStatsOutput writes the statistics to the Excel workbook and the
// SQLite output database.
func writeStatsOutput(settings *config.Settings, results []*stats.Result) error {
	renames, err := report.CompileRenames(settings.SheetRenames)
	if err != nil {
		return err
	}
	opts := report.ExcelOptions{
		NDigits:      settings.General.NDigits,
		SheetRenames: renames,
		GroupLabels:  settings.BreakdownLabels,
	}
	if err := report.WriteWorkbook(settings.General.Output+".xlsx", results, opts); err != nil {
		return err
	}

	db, err := store.Open(settings.General.Output + ".sqlite")
	if err != nil {
		return err
	}
	defer db.Close()
	for _, result := range results {
		if err := db.WriteFrame(result.FileBase, statsFrame(result)); err != nil {
			return err
		}
	}
	return nil
}

// statsFrame lays a breakdown result out as a flat table: the module,
// variable and option columns followed by one value column per group.
func statsFrame(result *stats.Result) *frame.Frame {
	n := len(result.Rows)
	modules := make([]string, n)
	variables := make([]string, n)
	options := make([]string, n)
	for i, row := range result.Rows {
		modules[i] = row.Module
		variables[i] = row.Variable
		options[i] = row.Option
	}

	f := frame.New()
	// the frame is built from scratch, the adds cannot fail
	_ = f.AddLabels("module", modules)
	_ = f.AddLabels("variable", variables)
	_ = f.AddLabels("option", options)
	for g, group := range result.Groups {
		values := make([]float64, n)
		for i, row := range result.Rows {
			if g < len(row.Values) {
				values[i] = row.Values[g]
			} else {
				values[i] = math.NaN()
			}
		}
		name := group
		if f.Column(name) != nil {
			name = fmt.Sprintf("%s_%d", group, g)
		}
		_ = f.AddFloats(name, frame.Float, values)
	}
	return f
}
