package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/roadframe/internal/config"
	"github.com/banshee-data/roadframe/internal/road"
	"github.com/banshee-data/roadframe/internal/timeutil"
	"github.com/banshee-data/roadframe/internal/track"
	"github.com/banshee-data/roadframe/internal/units"
)

// observation is one input row: a timestamp and a track.Measurement in the
// input frame.
type observation struct {
	T float64
	M track.Measurement
}

// readObservations parses whitespace separated "t a b va vb" rows. Blank
// lines and lines starting with # are skipped.
func readObservations(r io.Reader) ([]observation, error) {
	var out []observation
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
		var v [5]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
			v[i] = x
		}
		m, err := track.MeasurementFromSlice(v[1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, observation{T: v[0], M: m})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type replayer struct {
	model    *road.Model
	track    *track.Track
	events   chan track.JumpEvent
	frenet   bool
	units    string
	realtime bool
	clock    timeutil.Clock

	prevS float64
	haveS bool
	prevT float64
	haveT bool
}

func newReplayer(m *road.Model, tuning *config.TuningConfig, opts options) *replayer {
	r := &replayer{
		model:    m,
		frenet:   opts.frenet,
		units:    opts.units,
		realtime: opts.realtime,
		clock:    opts.clock,
	}
	trackOpts := []track.Option{track.WithClock(opts.clock)}
	if opts.recordJumps {
		r.events = make(chan track.JumpEvent, tuning.GetDiagnosticsBuffer())
		trackOpts = append(trackOpts, track.WithDiagnostics(r.events))
	}
	r.track = track.New(opts.trackID, track.ConfigFromTuning(tuning), trackOpts...)
	return r
}

// unwrap moves s by whole loop lengths so that it stays continuous with the
// previous observation. Without it every seam crossing would look like a
// position jump of one loop length.
func (r *replayer) unwrap(s float64) float64 {
	if !r.haveS {
		r.prevS, r.haveS = s, true
		return s
	}
	L := r.model.TrackLength()
	s += L * math.Round((r.prevS-s)/L)
	r.prevS = s
	return s
}

func (r *replayer) header() string {
	speed := "speed_" + units.Label(r.units)
	if r.frenet {
		return "# t x y vx vy " + speed + " heading"
	}
	return "# t s d vs vd " + speed + " heading"
}

func (r *replayer) replay(ctx context.Context, obs []observation, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, r.header())
	for _, o := range obs {
		if err := ctx.Err(); err != nil {
			bw.Flush()
			return err
		}
		if r.realtime && r.haveT && o.T > r.prevT {
			bw.Flush()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(time.Duration((o.T - r.prevT) * float64(time.Second))):
			}
		}
		r.prevT, r.haveT = o.T, true

		m := o.M
		if r.frenet {
			m.X = r.unwrap(m.X)
		}
		r.track.NewMeasurement(m, o.T)
		fmt.Fprintln(bw, r.report(o.T))
	}
	return bw.Flush()
}

// report converts the state just folded in at time t into the other frame.
// A measurement resets the track origin, so the current state sits at T0.
func (r *replayer) report(t float64) string {
	st := r.track.State()
	heading := r.track.Orientation(r.track.T0())
	if r.frenet {
		c := r.model.ToCartesian(road.FrenetState{
			T: t, S: st.X.Position, D: st.Y.Position,
			VS: st.X.Velocity, VD: st.Y.Velocity,
			AS: st.X.Acceleration, AD: st.Y.Acceleration,
		})
		speed := units.ConvertSpeed(c.Velocity().Norm(), r.units)
		return fmt.Sprintf("%.3f %.3f %.3f %.3f %.3f %.3f %.4f", t, c.X, c.Y, c.VX, c.VY, speed, c.Heading())
	}
	f := r.model.ToFrenet(road.CartesianState{
		T: t, X: st.X.Position, Y: st.Y.Position,
		VX: st.X.Velocity, VY: st.Y.Velocity,
		AX: st.X.Acceleration, AY: st.Y.Acceleration,
	})
	speed := units.ConvertSpeed(st.Speed(), r.units)
	return fmt.Sprintf("%.3f %.3f %.3f %.3f %.3f %.3f %.4f", t, f.S, f.D, f.VS, f.VD, speed, heading)
}
