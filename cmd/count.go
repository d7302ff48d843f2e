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
	"sort"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/store"
)

// tableWidths returns the column widths needed to align table names and
// row counts.
func tableWidths(counts map[string]int) (maxNameLen int, maxCountLen int) {
	var maxCount int
	for name, count := range counts {
		if len(name) > maxNameLen {
			maxNameLen = len(name)
		}
		if count > maxCount {
			maxCount = count
		}
	}
	return maxNameLen, len(fmt.Sprintf("%d", maxCount))
}

// countTables counts the rows of every table in the database at path.
func countTables(path string) (map[string]int, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := db.TableNames()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		count, err := db.CountRows(table)
		if err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}

func printCounts(database string, counts map[string]int) {
	fmt.Printf("%s:\n", database)

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	maxNameLen, maxCountLen := tableWidths(counts)
	for _, name := range names {
		fmt.Printf("  %-"+fmt.Sprintf("%d", maxNameLen)+"s : %"+fmt.Sprintf("%d", maxCountLen)+"d\n",
			name, counts[name])
	}
}

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count [settings-file]",
	Short: "Count the rows of every table in the input databases",
	Long: `Counts the rows of every table in the records database and the scan
database, a quick sanity check before running an analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(args[0])
		if err != nil {
			return err
		}

		for _, database := range []string{
			settings.General.RecordsDatabase,
			settings.General.ScanDatabase,
		} {
			counts, err := countTables(database)
			if err != nil {
				return err
			}
			printCounts(database, counts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
