package model

import (
	"time"

	"cine/internal/ledger"
	"cine/shared/constant"
	"cine/shared/model"
)

const (
	TableName  = "employee_schedules"
	EntityName = "employee schedule"

	FieldID         = "id"
	FieldEmployeeID = "employee_id"
	FieldWorkDate   = "work_date"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"
	FieldStatus     = "status"
	FieldNotes      = "notes"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusMissed    = "missed"
)

// CanTransition reports whether a shift may move from one status to another.
// Completed and missed are terminal.
func CanTransition(from, to string) bool {
	return from == StatusScheduled && (to == StatusCompleted || to == StatusMissed)
}

// EmployeeSchedule is one shift. StartTime and EndTime are wall-clock values
// ("15:04") on WorkDate.
type EmployeeSchedule struct {
	ID         string    `db:"id"`
	EmployeeID string    `db:"employee_id"`
	WorkDate   time.Time `db:"work_date"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
	Status     string    `db:"status"`
	Notes      string    `db:"notes"`
	model.Metadata
}

// Interval anchors the clock pair on WorkDate and returns the shift's slot.
func (s EmployeeSchedule) Interval() (ledger.Interval, error) {
	start, err := onDate(s.WorkDate, s.StartTime)
	if err != nil {
		return ledger.Interval{}, err
	}

	end, err := onDate(s.WorkDate, s.EndTime)
	if err != nil {
		return ledger.Interval{}, err
	}

	return ledger.NewInterval(start, end)
}

// onDate accepts both the API clock format and the seconds-bearing form
// Postgres TIME columns scan into.
func onDate(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(constant.ClockFormat, clock)
	if err != nil {
		t, err = time.Parse(constant.ClockSecondsFormat, clock)
	}
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location(),
	), nil
}
