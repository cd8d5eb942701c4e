package roaddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/road"
)

// ErrSetNotFound is returned when no waypoint set has the requested name.
var ErrSetNotFound = errors.New("roaddb: waypoint set not found")

// WaypointSet describes a stored waypoint list.
type WaypointSet struct {
	ID          uuid.UUID
	Name        string
	TrackLength float64
	Waypoints   int
	CreatedAt   time.Time
}

// ImportWaypoints stores waypoints under name, replacing any set with the
// same name. The set is validated by building a road model first, so only
// loadable sets are stored.
func (db *DB) ImportWaypoints(ctx context.Context, name string, wps []road.Waypoint, trackLength float64) (uuid.UUID, error) {
	if _, err := road.New(wps, trackLength); err != nil {
		return uuid.Nil, fmt.Errorf("refusing to import %q: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit child delete: foreign_keys is only enabled on the first
	// pooled connection.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM waypoints WHERE set_id IN (SELECT set_id FROM waypoint_sets WHERE name = ?)`, name); err != nil {
		return uuid.Nil, fmt.Errorf("failed to replace waypoints: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM waypoint_sets WHERE name = ?`, name); err != nil {
		return uuid.Nil, fmt.Errorf("failed to replace waypoint set: %w", err)
	}

	id := uuid.New()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO waypoint_sets (set_id, name, track_length) VALUES (?, ?, ?)`,
		id.String(), name, trackLength); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert waypoint set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO waypoints (set_id, seq, x, y, s, nx, ny) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare waypoint insert: %w", err)
	}
	defer stmt.Close()

	for i, wp := range wps {
		if _, err := stmt.ExecContext(ctx, id.String(), i,
			wp.Position.X, wp.Position.Y, wp.S, wp.Normal.X, wp.Normal.Y); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert waypoint %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit waypoint set: %w", err)
	}
	return id, nil
}

// Waypoints returns the waypoints and track length of the named set.
func (db *DB) Waypoints(ctx context.Context, name string) ([]road.Waypoint, float64, error) {
	var (
		setID       string
		trackLength float64
	)
	err := db.QueryRowContext(ctx,
		`SELECT set_id, track_length FROM waypoint_sets WHERE name = ?`, name).Scan(&setID, &trackLength)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %q", ErrSetNotFound, name)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up waypoint set: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT x, y, s, nx, ny FROM waypoints WHERE set_id = ? ORDER BY seq`, setID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query waypoints: %w", err)
	}
	defer rows.Close()

	var wps []road.Waypoint
	for rows.Next() {
		var x, y, s, nx, ny float64
		if err := rows.Scan(&x, &y, &s, &nx, &ny); err != nil {
			return nil, 0, fmt.Errorf("failed to scan waypoint: %w", err)
		}
		wps = append(wps, road.Waypoint{Position: geom.V2(x, y), S: s, Normal: geom.V2(nx, ny)})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return wps, trackLength, nil
}

// LoadModel builds the road model of the named set.
func (db *DB) LoadModel(ctx context.Context, name string) (*road.Model, error) {
	wps, trackLength, err := db.Waypoints(ctx, name)
	if err != nil {
		return nil, err
	}
	return road.New(wps, trackLength)
}

// WaypointSets lists stored sets ordered by name.
func (db *DB) WaypointSets(ctx context.Context) ([]WaypointSet, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ws.set_id, ws.name, ws.track_length,
			COALESCE(CAST(strftime('%s', ws.created_at) AS INTEGER), 0), COUNT(w.seq)
		FROM waypoint_sets ws
		LEFT JOIN waypoints w ON w.set_id = ws.set_id
		GROUP BY ws.set_id
		ORDER BY ws.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list waypoint sets: %w", err)
	}
	defer rows.Close()

	var sets []WaypointSet
	for rows.Next() {
		var (
			ws      WaypointSet
			id      string
			created int64
		)
		if err := rows.Scan(&id, &ws.Name, &ws.TrackLength, &created, &ws.Waypoints); err != nil {
			return nil, fmt.Errorf("failed to scan waypoint set: %w", err)
		}
		if ws.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad set id %q: %w", id, err)
		}
		ws.CreatedAt = time.Unix(created, 0).UTC()
		sets = append(sets, ws)
	}
	return sets, rows.Err()
}
