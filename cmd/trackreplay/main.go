// Command trackreplay feeds recorded vehicle observations through a
// kinematic track and reports the filtered state in the other frame.
//
// Input rows are "t x y vx vy" in world coordinates, or "t s d vs vd" with
// -frenet. Cartesian input is reported in Frenet coordinates and vice versa.
//
//	trackreplay -waypoints data/highway_map.csv -in drive.txt -units mph
//	trackreplay -db road.db -set highway -in drive.txt -record-jumps
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/roadframe/internal/config"
	"github.com/banshee-data/roadframe/internal/road"
	"github.com/banshee-data/roadframe/internal/roaddb"
	"github.com/banshee-data/roadframe/internal/timeutil"
	"github.com/banshee-data/roadframe/internal/units"
	"github.com/banshee-data/roadframe/internal/version"
)

var (
	waypointsPath = flag.String("waypoints", "", "Waypoint file (rows of x y s dx dy)")
	dbPath        = flag.String("db", "", "SQLite database holding waypoint sets and jump events")
	setName       = flag.String("set", "", "Waypoint set name in -db")
	configPath    = flag.String("config", "", "Tuning config JSON (defaults to built-in values)")
	trackLength   = flag.Float64("track-length", 0, "Loop length in metres (overrides config when > 0)")
	inPath        = flag.String("in", "-", "Observation file, - for stdin")
	frenetInput   = flag.Bool("frenet", false, "Observations are Frenet (t s d vs vd)")
	speedUnits    = flag.String("units", units.MPS, "Speed units for output: mps, mph, kmph, kph")
	trackID       = flag.Int("id", 0, "Track identifier used in logs and stored events")
	recordJumps   = flag.Bool("record-jumps", false, "Store position jump events in -db")
	showVersion   = flag.Bool("version", false, "Print version and exit")
	realtime      = flag.Bool("realtime", false, "Pace the replay by observation timestamps")
)

type options struct {
	waypoints   string
	db          string
	set         string
	config      string
	trackLength float64
	frenet      bool
	units       string
	trackID     int
	recordJumps bool
	realtime    bool
	clock       timeutil.Clock
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("trackreplay"))
		return
	}
	if err := replayMain(); err != nil {
		log.Fatalf("trackreplay: %v", err)
	}
}

// replayMain opens the input and runs the replay.
func replayMain() error {
	unit, err := units.Parse(*speedUnits)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		waypoints:   *waypointsPath,
		db:          *dbPath,
		set:         *setName,
		config:      *configPath,
		trackLength: *trackLength,
		frenet:      *frenetInput,
		units:       unit,
		trackID:     *trackID,
		recordJumps: *recordJumps,
		realtime:    *realtime,
		clock:       timeutil.RealClock{},
	}
	return run(ctx, opts, in, os.Stdout)
}

func run(ctx context.Context, opts options, in io.Reader, w io.Writer) error {
	tuning := config.DefaultTuningConfig()
	if opts.config != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.config); err != nil {
			return err
		}
	}
	length := tuning.GetTrackLength()
	if opts.trackLength > 0 {
		length = opts.trackLength
	}
	if opts.units == "" {
		opts.units = units.MPS
	}
	if opts.clock == nil {
		opts.clock = timeutil.RealClock{}
	}

	var db *roaddb.DB
	if opts.db != "" {
		var err error
		if db, err = roaddb.Open(opts.db); err != nil {
			return err
		}
		defer db.Close()
	}
	if opts.recordJumps && db == nil {
		return errors.New("-record-jumps requires -db")
	}

	var model *road.Model
	var err error
	switch {
	case opts.waypoints != "":
		model, err = road.LoadFile(opts.waypoints, length)
	case db != nil && opts.set != "":
		model, err = db.LoadModel(ctx, opts.set)
	default:
		err = errors.New("one of -waypoints or -db/-set is required")
	}
	if err != nil {
		return err
	}

	obs, err := readObservations(in)
	if err != nil {
		return fmt.Errorf("read observations: %w", err)
	}

	r := newReplayer(model, tuning, opts)

	var g errgroup.Group
	stored := 0
	if opts.recordJumps {
		g.Go(func() error {
			n, err := db.RecordJumps(ctx, r.events)
			stored = n
			return err
		})
	}

	replayErr := r.replay(ctx, obs, w)
	if r.events != nil {
		close(r.events)
	}
	if err := g.Wait(); err != nil && replayErr == nil {
		replayErr = fmt.Errorf("record jumps: %w", err)
	}
	if opts.recordJumps {
		log.Printf("stored %d jump events", stored)
	}

	log.Printf("replayed %d observations for track %d: %d jumps, %d events dropped",
		len(obs), opts.trackID, r.track.Jumps(), r.track.DroppedEvents())
	return replayErr
}
