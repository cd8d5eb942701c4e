package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/roadframe/internal/road"
)

// renderProfiles writes an HTML page with heading and curvature along s and
// an XY view of the centerline.
func renderProfiles(m *road.Model, step float64, w io.Writer) error {
	samples := m.Centerline(step)
	if len(samples) == 0 {
		return fmt.Errorf("no centerline samples for step %g", step)
	}

	xs := make([]string, len(samples))
	heading := make([]opts.LineData, len(samples))
	curvature := make([]opts.LineData, len(samples))
	xy := make([]opts.ScatterData, len(samples))
	for i, smp := range samples {
		xs[i] = fmt.Sprintf("%.1f", smp.S)
		heading[i] = opts.LineData{Value: smp.Heading}
		curvature[i] = opts.LineData{Value: smp.Curvature}
		xy[i] = opts.ScatterData{Value: []interface{}{smp.Position.X, smp.Position.Y}}
	}
	subtitle := fmt.Sprintf("waypoints=%d length=%.1fm step=%gm", m.WaypointCount(), m.TrackLength(), step)

	headingChart := charts.NewLine()
	headingChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Road profile", Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Heading", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rad"}),
	)
	headingChart.SetXAxis(xs).AddSeries("heading", heading)

	curvatureChart := charts.NewLine()
	curvatureChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Curvature"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "1/m"}),
	)
	curvatureChart.SetXAxis(xs).AddSeries("curvature", curvature)

	mapChart := charts.NewScatter()
	mapChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Centerline"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	mapChart.AddSeries("centerline", xy, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	page := components.NewPage()
	page.AddCharts(headingChart, curvatureChart, mapChart)
	return page.Render(w)
}
