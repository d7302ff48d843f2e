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
	"time"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/cache"
	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/domains"
	"github.com/statnl/domainstat/frame"
	"github.com/statnl/domainstat/store"
	"github.com/statnl/domainstat/util"
)

var exportDataframe bool

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [settings-file]",
	Short: "Combine scan results with business records",
	Long: `Reads the business records database and the internet.nl scan database,
reduces every URL to its registered domain, joins the two datasets on
that domain and caches the combined dataset for the other commands.

Records without a weight are dropped and duplicated business ids are
reduced to their first occurrence.`,
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
		dataset, err := mergeDataset(settings, cacheDir, cache.ResetAll)
		if err != nil {
			return err
		}

		if exportDataframe {
			exportFile := settings.General.Output + ".sqlite"
			if err := exportMerged(exportFile, dataset); err != nil {
				return err
			}
			fmt.Printf("Export           [file]                   %s\n", exportFile)
		}

		fmt.Printf("Records          [total]                  %d\n", dataset.NumRows())
		fmt.Printf("Columns          [total]                  %d\n", dataset.NumCols())
		fmt.Printf("Duration         [total]                  %s\n", util.FmtDurationHumanReadable(time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().BoolVar(&exportDataframe, "export", false, "also write the merged dataset to a SQLite file")
}

// mergeDataset returns the merged dataset, from the cache when allowed
// by the reset level and present, otherwise freshly built from the two
// databases.
func mergeDataset(settings *config.Settings, cacheDir *cache.Dir, reset int) (*frame.Frame, error) {
	if reset != cache.ResetAll && cacheDir.Exists(mergedCacheName) {
		slog.Info("reading merged dataset from cache", "entry", mergedCacheName)
		dataset := &frame.Frame{}
		if err := cacheDir.Load(mergedCacheName, dataset); err != nil {
			return nil, err
		}
		return dataset, nil
	}

	dataset, err := buildDataset(settings)
	if err != nil {
		return nil, err
	}
	slog.Info("writing merged dataset to cache", "entry", mergedCacheName)
	if err := cacheDir.Save(mergedCacheName, dataset); err != nil {
		return nil, err
	}
	return dataset, nil
}

// buildDataset reads, cleans and joins the records and scan databases.
func buildDataset(settings *config.Settings) (*frame.Frame, error) {
	g := settings.General

	records, err := readDatabase(g.RecordsDatabase, g.RecordsTables, g.IDKey)
	if err != nil {
		return nil, err
	}
	reduceToDomain(records, g.URLKey)

	scan, err := readDatabase(g.ScanDatabase, g.ScanTables, g.ScanIndex)
	if err != nil {
		return nil, err
	}
	scan.Rename(g.ScanIndex, g.URLKey)
	reduceToDomain(scan, g.URLKey)

	scan.TranslateNearBooleans(settings.Translations, settings.DictVariables())
	for _, v := range settings.VariableList() {
		scan.ApplyValueMap(v.Name, v.TranslateOpts)
		scan.Coerce(v.Name, frame.KindFromType(v.Type))
	}

	dataset, err := records.Join(scan, g.URLKey)
	if err != nil {
		return nil, fmt.Errorf("join records with scan results: %w", err)
	}
	slog.Info("joined records with scan results", "rows", dataset.NumRows())

	dataset, err = dataset.DropMissing(settings.DefaultWeight)
	if err != nil {
		return nil, fmt.Errorf("drop records without weight: %w", err)
	}
	dataset, err = dataset.Dedupe(g.IDKey)
	if err != nil {
		return nil, fmt.Errorf("drop duplicated business ids: %w", err)
	}
	return dataset, nil
}

// readDatabase opens a SQLite database and reads the given tables into
// one frame.
func readDatabase(path string, tables []string, indexCol string) (*frame.Frame, error) {
	slog.Info("reading tables", "database", path, "tables", tables)
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.ReadTables(tables, indexCol)
}

// reduceToDomain replaces every URL in the named column with its
// registered domain, the join key of the two datasets.
func reduceToDomain(f *frame.Frame, urlCol string) {
	c := f.Column(urlCol)
	if c == nil || c.Kind.Numeric() {
		return
	}
	for i, rawURL := range c.Labels {
		c.Labels[i] = domains.Domain(rawURL)
	}
}

// exportMerged writes the merged dataset to a SQLite file, dropping
// case-insensitive duplicate column names first since SQLite column
// names are case-insensitive.
func exportMerged(path string, dataset *frame.Frame) error {
	for _, name := range dataset.DropDuplicateColumns() {
		slog.Info("dropping duplicated column", "column", name)
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.WriteFrame("dataframe", dataset)
}
