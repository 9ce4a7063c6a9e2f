package ledger

import (
	"time"

	"cine/shared/failure"
)

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds a validated interval. End must be strictly after Start.
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, failure.InvalidInterval("end time must be after start time")
	}

	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
// Back-to-back intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
