package track

import (
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roadframe/internal/geom"
)

// JumpEvent reports a measurement whose position moved further than
// MaxPositionJumpMeters on either axis since the previous one. The
// measurement is still applied.
type JumpEvent struct {
	ID         uuid.UUID
	TrackID    int
	Time       float64   // measurement time
	ObservedAt time.Time // wall clock when the jump was detected
	From       geom.Vec2
	To         geom.Vec2
	Distance   float64
}

// Delta returns the displacement that triggered the event.
func (e JumpEvent) Delta() geom.Vec2 {
	return e.To.Sub(e.From)
}
