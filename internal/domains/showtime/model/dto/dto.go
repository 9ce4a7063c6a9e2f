package dto

import (
	"time"

	"cine/internal/domains/showtime/model"
	"cine/shared"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	gModel "cine/shared/model"
	"cine/shared/timezone"

	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	MovieID     string    `json:"movie_id" validate:"required,uuid"`
	RoomID      string    `json:"room_id" validate:"required,uuid"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	TicketPrice float64   `json:"ticket_price" validate:"gte=0"`
}

func (c *CreateScheduleRequest) ToModel() model.Schedule {
	return model.Schedule{
		ID:          uuid.NewString(),
		MovieID:     c.MovieID,
		RoomID:      c.RoomID,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		TicketPrice: c.TicketPrice,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
			UpdatedAt: timezone.Now(),
		},
	}
}

// Pointer fields distinguish "leave unchanged" from zero values; the service
// merges them onto the stored row before re-validating the whole slot.
type UpdateScheduleRequest struct {
	MovieID     *string    `json:"movie_id" validate:"omitempty,uuid"`
	RoomID      *string    `json:"room_id" validate:"omitempty,uuid"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	TicketPrice *float64   `json:"ticket_price" validate:"omitempty,gte=0"`
}

// Apply merges the overridden fields onto existing and returns the candidate
// row an update is validated against.
func (u *UpdateScheduleRequest) Apply(existing model.Schedule) model.Schedule {
	candidate := existing

	if u.MovieID != nil {
		candidate.MovieID = *u.MovieID
	}
	if u.RoomID != nil {
		candidate.RoomID = *u.RoomID
	}
	if u.StartTime != nil {
		candidate.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		candidate.EndTime = *u.EndTime
	}
	if u.TicketPrice != nil {
		candidate.TicketPrice = *u.TicketPrice
	}

	return candidate
}

type ScheduleResponse struct {
	ID          string  `json:"id"`
	MovieID     string  `json:"movie_id"`
	RoomID      string  `json:"room_id"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	TicketPrice float64 `json:"ticket_price"`
	gDto.Metadata
}

func (r *ScheduleResponse) FromModel(model model.Schedule) {
	r.ID = model.ID
	r.MovieID = model.MovieID
	r.RoomID = model.RoomID
	r.StartTime = timezone.Format(model.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(model.EndTime, constant.DateFormat)
	r.TicketPrice = model.TicketPrice
	r.Metadata.FromModel(model.Metadata)
}

type GetSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetSchedulesResponse) FromModels(models []model.Schedule, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Schedules = make([]ScheduleResponse, len(models))
	for i, m := range models {
		r.Schedules[i].FromModel(m)
	}
}
