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

// Package plots renders the per-question bar charts of the computed
// statistics as image files.
package plots

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default figure size in centimeters, used when the settings give none.
const (
	defaultWidthCm  = 15.0
	defaultHeightCm = 10.0
)

// A RefLine is a vertical reference line drawn behind the bars, e.g. the
// national mean next to a per-sector breakdown.
type RefLine struct {
	Label string
	Value float64
}

// A BarChart describes one horizontal bar chart: one bar per group of a
// breakdown.
type BarChart struct {
	Title  string
	XLabel string
	// Groups and Values must have the same length. Groups with a NaN
	// value are left out of the chart.
	Groups   []string
	Values   []float64
	RefLines []RefLine
	// WidthCm and HeightCm give the figure size; zero means default.
	WidthCm, HeightCm float64
}

// Render draws the chart and writes it to path. The image format follows
// the file extension (.pdf, .png, .svg, ...).
func Render(path string, chart BarChart) error {
	if len(chart.Groups) != len(chart.Values) {
		return fmt.Errorf("bar chart %s: %d groups but %d values", path, len(chart.Groups), len(chart.Values))
	}

	var groups []string
	var values plotter.Values
	for i, v := range chart.Values {
		if math.IsNaN(v) {
			continue
		}
		groups = append(groups, chart.Groups[i])
		values = append(values, v)
	}
	if len(values) == 0 {
		return fmt.Errorf("bar chart %s: no plottable values", path)
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel

	bars, err := plotter.NewBarChart(values, vg.Points(15))
	if err != nil {
		return fmt.Errorf("bar chart %s: %w", path, err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	bars.Color = color.RGBA{R: 0x27, G: 0x6e, B: 0x96, A: 0xff}
	p.Add(bars)
	p.NominalY(groups...)

	for _, ref := range chart.RefLines {
		if math.IsNaN(ref.Value) {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{
			{X: ref.Value, Y: -0.5},
			{X: ref.Value, Y: float64(len(values)) - 0.5},
		})
		if err != nil {
			return fmt.Errorf("bar chart %s: %w", path, err)
		}
		line.LineStyle = draw.LineStyle{
			Color:  color.RGBA{R: 0xc9, G: 0x30, B: 0x0c, A: 0xff},
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
		}
		p.Add(line)
		if ref.Label != "" {
			p.Legend.Add(ref.Label, line)
		}
	}

	width, height := chart.WidthCm, chart.HeightCm
	if width <= 0 {
		width = defaultWidthCm
	}
	if height <= 0 {
		height = defaultHeightCm
	}
	if err := p.Save(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter, path); err != nil {
		return fmt.Errorf("bar chart %s: %w", path, err)
	}
	return nil
}
