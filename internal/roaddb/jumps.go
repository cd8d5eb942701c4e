package roaddb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/track"
)

// RecordJump stores one jump event.
func (db *DB) RecordJump(ctx context.Context, ev track.JumpEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO jump_events (event_id, track_id, t, observed_at_ns, from_x, from_y, to_x, to_y, distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID.String(), ev.TrackID, ev.Time, ev.ObservedAt.UnixNano(),
		ev.From.X, ev.From.Y, ev.To.X, ev.To.Y, ev.Distance)
	if err != nil {
		return fmt.Errorf("failed to record jump event: %w", err)
	}
	return nil
}

// RecordJumps stores events from ch until ch is closed or ctx is done, and
// returns how many were stored. It stops at the first storage error.
func (db *DB) RecordJumps(ctx context.Context, ch <-chan track.JumpEvent) (int, error) {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return n, nil
			}
			if err := db.RecordJump(ctx, ev); err != nil {
				return n, err
			}
			n++
		}
	}
}

// JumpEvents returns the stored events of one track ordered by time, or of
// all tracks when trackID is negative.
func (db *DB) JumpEvents(ctx context.Context, trackID int) ([]track.JumpEvent, error) {
	query := `SELECT event_id, track_id, t, observed_at_ns, from_x, from_y, to_x, to_y, distance
		FROM jump_events`
	var args []interface{}
	if trackID >= 0 {
		query += ` WHERE track_id = ?`
		args = append(args, trackID)
	}
	query += ` ORDER BY t, track_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jump events: %w", err)
	}
	defer rows.Close()

	var out []track.JumpEvent
	for rows.Next() {
		var (
			ev                     track.JumpEvent
			id                     string
			observedNs             int64
			fromX, fromY, toX, toY float64
		)
		if err := rows.Scan(&id, &ev.TrackID, &ev.Time, &observedNs, &fromX, &fromY, &toX, &toY, &ev.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan jump event: %w", err)
		}
		if ev.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad event id %q: %w", id, err)
		}
		ev.ObservedAt = time.Unix(0, observedNs).UTC()
		ev.From = geom.V2(fromX, fromY)
		ev.To = geom.V2(toX, toY)
		out = append(out, ev)
	}
	return out, rows.Err()
}
