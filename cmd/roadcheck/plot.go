package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/roadframe/internal/config"
	"github.com/banshee-data/roadframe/internal/road"
)

var (
	centerlineColor = color.RGBA{R: 220, G: 160, B: 0, A: 255}
	laneColor       = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	waypointColor   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// renderMap draws the centerline, lane boundaries to the right of it, and
// the raw waypoints.
func renderMap(m *road.Model, tuning *config.TuningConfig, step float64, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Road loop (%d waypoints, %.0f m)", m.WaypointCount(), m.TrackLength())
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	samples := m.Centerline(step)
	if len(samples) == 0 {
		return fmt.Errorf("no centerline samples for step %g", step)
	}

	laneWidth := tuning.GetLaneWidth()
	for lane := 0; lane <= tuning.GetLaneCount(); lane++ {
		d := float64(lane) * laneWidth
		pts := make(plotter.XYs, 0, len(samples)+1)
		for _, smp := range samples {
			pt := m.XY(smp.S, d)
			pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
		}
		pts = append(pts, pts[0]) // close the loop

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(0.5)
		line.Color = laneColor
		if lane == 0 {
			line.Width = vg.Points(1)
			line.Color = centerlineColor
			p.Legend.Add("centerline", line)
		} else if lane == 1 {
			line.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
			p.Legend.Add("lane boundary", line)
		} else {
			line.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(line)
	}

	wps := make(plotter.XYs, 0, m.WaypointCount())
	for _, wp := range m.Waypoints() {
		wps = append(wps, plotter.XY{X: wp.Position.X, Y: wp.Position.Y})
	}
	scatter, err := plotter.NewScatter(wps)
	if err != nil {
		return err
	}
	scatter.Color = waypointColor
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)
	p.Legend.Add("waypoints", scatter)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p.Save(10*vg.Inch, 10*vg.Inch, path)
}
