package model

import (
	"time"

	"cine/internal/ledger"
	"cine/shared/model"
)

const (
	TableName  = "schedules"
	EntityName = "schedule"

	FieldID          = "id"
	FieldMovieID     = "movie_id"
	FieldRoomID      = "room_id"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldTicketPrice = "ticket_price"
	FieldIsDeleted   = "is_deleted"
)

// Schedule is a showtime: one movie screened in one room over [StartTime,
// EndTime). Deleted rows stay in place with IsDeleted set.
type Schedule struct {
	ID          string    `db:"id"`
	MovieID     string    `db:"movie_id"`
	RoomID      string    `db:"room_id"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	TicketPrice float64   `db:"ticket_price"`
	IsDeleted   bool      `db:"is_deleted"`
	model.Metadata
}

// Interval returns the screening slot as a ledger interval. The stored pair
// is already validated, so the error from NewInterval is impossible here.
func (s Schedule) Interval() ledger.Interval {
	return ledger.Interval{Start: s.StartTime, End: s.EndTime}
}

// Entry returns the ledger entry this schedule occupies on its room's board.
func (s Schedule) Entry() ledger.Entry {
	return ledger.Entry{ID: s.ID, Interval: s.Interval()}
}
