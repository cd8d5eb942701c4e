package road

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/roadframe/internal/geom"
)

// Waypoint is a sampled point on the road centerline.
type Waypoint struct {
	Position geom.Vec2
	S        float64   // arc length from the loop origin
	Normal   geom.Vec2 // unit normal pointing to the right of travel
}

// Tangent returns the direction of travel at the waypoint, derived from the
// stored normal.
func (w Waypoint) Tangent() geom.Vec2 {
	return w.Normal.Perp()
}

// ReadWaypoints parses rows of five whitespace separated numbers
// "x y s dx dy". Blank lines and lines starting with '#' are skipped.
func ReadWaypoints(r io.Reader) ([]Waypoint, error) {
	var out []Waypoint
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, fmt.Errorf("line %d: expected 5 fields, got %d", line, len(fields))
		}
		var vals [5]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
			vals[i] = v
		}
		out = append(out, Waypoint{
			Position: geom.V2(vals[0], vals[1]),
			S:        vals[2],
			Normal:   geom.V2(vals[3], vals[4]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read waypoints: %w", err)
	}
	return out, nil
}

// WriteWaypoints writes waypoints in the format accepted by ReadWaypoints.
func WriteWaypoints(w io.Writer, waypoints []Waypoint) error {
	bw := bufio.NewWriter(w)
	for _, wp := range waypoints {
		if _, err := fmt.Fprintf(bw, "%s %s %s %s %s\n",
			formatFloat(wp.Position.X), formatFloat(wp.Position.Y), formatFloat(wp.S),
			formatFloat(wp.Normal.X), formatFloat(wp.Normal.Y)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
