package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kwv/profilegauge/profile"
)

// renderDeviationChart writes an HTML line chart of per-index
// deviation along the resampled curves, with the acceptance context in
// the subtitle.
func renderDeviationChart(w io.Writer, rec *profile.AnalysisRecord) error {
	report := rec.Report
	if report == nil || len(report.Deviations) == 0 {
		return fmt.Errorf("record %s has no deviation data", rec.ID)
	}

	x := make([]int, len(report.Deviations))
	y := make([]opts.LineData, len(report.Deviations))
	for i, d := range report.Deviations {
		x[i] = i
		y[i] = opts.LineData{Value: d}
	}

	subtitle := fmt.Sprintf("path=%s residual=%.3fpx", report.Path, report.AlignError)
	if report.Metrics != nil {
		subtitle = fmt.Sprintf("%s max=%.2fpx mean=%.2fpx p95=%.2fpx",
			subtitle, report.Metrics.MaxDeviation, report.Metrics.MeanDeviation, report.Metrics.P95Deviation)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Profile Deviation", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Deviation profile %s", rec.ID), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "resampled index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "deviation (px)"}),
	)
	line.SetXAxis(x).AddSeries("deviation", y,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return line.Render(w)
}
