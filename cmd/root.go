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
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/statnl/domainstat/cache"
	"github.com/statnl/domainstat/config"
)

var workingDirectory string
var outputBase string
var resetLevel int
var noProgress bool
var verbose bool
var debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "domainstat",
	Short: "Analyse internet.nl scan results from the command line",
	Long: `domainstat combines internet.nl scan results with business register
records, computes weighted statistics per breakdown and renders the
results as Excel workbooks, bar charts and a LaTeX overview.

A run is driven by a YAML settings file; the typical order of commands
is download, merge, stats, plot, report.`,
	Version: "0.9.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		} else if !verbose {
			level = slog.LevelWarn
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workingDirectory, "working-directory", "", "directory to run in, overrides the settings file")
	rootCmd.PersistentFlags().StringVarP(&outputBase, "output", "o", "", "base name of the output files, overrides the settings file")
	rootCmd.PersistentFlags().IntVar(&resetLevel, "reset", cache.ResetNone, "0 rebuilds everything including the merged dataset, 1 recomputes the statistics")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "don't show progress bar")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set loglevel to INFO")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "set loglevel to DEBUG")
}

// loadSettings reads the settings file given as the command argument and
// applies the flag overrides: the working directory is entered and the
// output base replaced when the corresponding flags are set.
func loadSettings(path string) (*config.Settings, error) {
	slog.Info("reading settings file", "path", path)
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if outputBase != "" {
		settings.General.Output = outputBase
	}

	dir := settings.General.WorkingDirectory
	if workingDirectory != "" {
		dir = workingDirectory
	}
	if dir != "" && dir != "." {
		if err := os.Chdir(dir); err != nil {
			return nil, fmt.Errorf("enter working directory: %w", err)
		}
	}
	cwd, _ := os.Getwd()
	slog.Info("running domain analysis", "directory", cwd)

	return settings, nil
}

// openCache opens the cache directory of the run.
func openCache(settings *config.Settings) (*cache.Dir, error) {
	return cache.New(settings.General.CacheDirectory)
}

// mergedCacheName is the cache entry holding the merged dataset.
const mergedCacheName = "merged_dataset"

// imagesCacheName is the cache entry holding the plot image inventory.
const imagesCacheName = "image_files"

// newProgress creates a progress container, discarding all output when
// progress bars are switched off.
func newProgress() *mpb.Progress {
	if noProgress {
		return mpb.New(mpb.WithOutput(io.Discard))
	}
	return mpb.New()
}

// newBar adds a bar in the house style to a progress container.
func newBar(progress *mpb.Progress, name string, total int) *mpb.Bar {
	return progress.AddBar(int64(total),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 10}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
}
