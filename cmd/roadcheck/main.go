// Command roadcheck validates a closed-loop waypoint map, prints spacing and
// curvature statistics, and optionally renders it or stores it in SQLite.
//
//	roadcheck -waypoints data/highway_map.csv -png map.png -html profile.html
//	roadcheck -waypoints data/highway_map.csv -db road.db -set highway -import
//	roadcheck -db road.db -set highway
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/roadframe/internal/config"
	"github.com/banshee-data/roadframe/internal/road"
	"github.com/banshee-data/roadframe/internal/roaddb"
	"github.com/banshee-data/roadframe/internal/version"
)

var (
	waypointsPath = flag.String("waypoints", "", "Waypoint file (rows of x y s dx dy)")
	configPath    = flag.String("config", "", "Tuning config JSON (defaults to built-in values)")
	trackLength   = flag.Float64("track-length", 0, "Loop length in metres (overrides config when > 0)")
	dbPath        = flag.String("db", "", "SQLite database for waypoint sets")
	setName       = flag.String("set", "", "Waypoint set name in -db")
	doImport      = flag.Bool("import", false, "Store -waypoints in -db under -set")
	pngPath       = flag.String("png", "", "Write a map of the loop as PNG")
	htmlPath      = flag.String("html", "", "Write heading and curvature profiles as HTML")
	showVersion   = flag.Bool("version", false, "Print version and exit")
	step          = flag.Float64("step", 1.0, "Centerline sampling step in metres for rendering")
)

type options struct {
	waypoints   string
	config      string
	trackLength float64
	db          string
	set         string
	doImport    bool
	png         string
	html        string
	step        float64
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("roadcheck"))
		return
	}
	opts := options{
		waypoints:   *waypointsPath,
		config:      *configPath,
		trackLength: *trackLength,
		db:          *dbPath,
		set:         *setName,
		doImport:    *doImport,
		png:         *pngPath,
		html:        *htmlPath,
		step:        *step,
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("roadcheck: %v", err)
	}
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(ctx context.Context, opts options, w io.Writer) error {
	tuning, err := loadTuning(opts.config)
	if err != nil {
		return err
	}
	length := tuning.GetTrackLength()
	if opts.trackLength > 0 {
		length = opts.trackLength
	}

	var db *roaddb.DB
	if opts.db != "" {
		if opts.set == "" {
			return errors.New("-db requires -set")
		}
		db, err = roaddb.Open(opts.db)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var model *road.Model
	switch {
	case opts.waypoints != "":
		model, err = road.LoadFile(opts.waypoints, length)
		if err != nil {
			return err
		}
		if opts.doImport {
			if db == nil {
				return errors.New("-import requires -db and -set")
			}
			id, err := db.ImportWaypoints(ctx, opts.set, model.Waypoints(), model.TrackLength())
			if err != nil {
				return err
			}
			log.Printf("stored %d waypoints as %q (%s)", model.WaypointCount(), opts.set, id)
		}
	case db != nil:
		model, err = db.LoadModel(ctx, opts.set)
		if err != nil {
			return err
		}
	default:
		return errors.New("one of -waypoints or -db/-set is required")
	}

	printStats(w, model.Stats())

	if opts.png != "" {
		if err := renderMap(model, tuning, opts.step, opts.png); err != nil {
			return fmt.Errorf("render png: %w", err)
		}
		log.Printf("wrote %s", opts.png)
	}
	if opts.html != "" {
		f, err := os.Create(opts.html)
		if err != nil {
			return err
		}
		if err := renderProfiles(model, opts.step, f); err != nil {
			f.Close()
			return fmt.Errorf("render html: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s", opts.html)
	}
	return nil
}

func printStats(w io.Writer, st road.Stats) {
	fmt.Fprintf(w, "waypoints:       %d\n", st.Waypoints)
	fmt.Fprintf(w, "track length:    %.3f m\n", st.TrackLength)
	fmt.Fprintf(w, "spacing:         min %.3f  mean %.3f  max %.3f m\n", st.MinSpacing, st.MeanSpacing, st.MaxSpacing)
	fmt.Fprintf(w, "curvature |k|:   mean %.5f  max %.5f 1/m\n", st.MeanAbsCurvature, st.MaxAbsCurvature)
	fmt.Fprintf(w, "min radius:      %.1f m\n", st.MinRadius)
}
