package dto

import (
	"cine/internal/domains/shift/model"
	"cine/shared"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	gModel "cine/shared/model"
	"cine/shared/timezone"

	"github.com/google/uuid"
)

type CreateEmployeeScheduleRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	WorkDate   string `json:"work_date" validate:"required,dayformat"`
	StartTime  string `json:"start_time" validate:"required,clockformat"`
	EndTime    string `json:"end_time" validate:"required,clockformat"`
	Notes      string `json:"notes"`
}

func (c *CreateEmployeeScheduleRequest) ToModel() (model.EmployeeSchedule, error) {
	workDate, err := timezone.Parse(constant.DayFormat, c.WorkDate)
	if err != nil {
		return model.EmployeeSchedule{}, err
	}

	return model.EmployeeSchedule{
		ID:         uuid.NewString(),
		EmployeeID: c.EmployeeID,
		WorkDate:   workDate,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		Status:     model.StatusScheduled,
		Notes:      c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
			UpdatedAt: timezone.Now(),
		},
	}, nil
}

type UpdateEmployeeScheduleRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,min=1"`
	WorkDate   *string `json:"work_date" validate:"omitempty,dayformat"`
	StartTime  *string `json:"start_time" validate:"omitempty,clockformat"`
	EndTime    *string `json:"end_time" validate:"omitempty,clockformat"`
	Notes      *string `json:"notes"`
}

// Apply merges the overridden fields onto existing and returns the candidate
// shift an update is validated against.
func (u *UpdateEmployeeScheduleRequest) Apply(existing model.EmployeeSchedule) (model.EmployeeSchedule, error) {
	candidate := existing

	if u.EmployeeID != nil {
		candidate.EmployeeID = *u.EmployeeID
	}
	if u.WorkDate != nil {
		workDate, err := timezone.Parse(constant.DayFormat, *u.WorkDate)
		if err != nil {
			return model.EmployeeSchedule{}, err
		}
		candidate.WorkDate = workDate
	}
	if u.StartTime != nil {
		candidate.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		candidate.EndTime = *u.EndTime
	}
	if u.Notes != nil {
		candidate.Notes = *u.Notes
	}

	return candidate, nil
}

type RecordOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=completed missed"`
	Notes   string `json:"notes"`
}

type EmployeeScheduleResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	gDto.Metadata
}

func (r *EmployeeScheduleResponse) FromModel(model model.EmployeeSchedule) {
	r.ID = model.ID
	r.EmployeeID = model.EmployeeID
	r.WorkDate = timezone.Format(model.WorkDate, constant.DayFormat)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Status = model.Status
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetEmployeeSchedulesResponse struct {
	EmployeeSchedules []EmployeeScheduleResponse `json:"employee_schedules"`
	TotalPage         int                        `json:"total_page"`
	TotalData         int                        `json:"total_data"`
}

func (r *GetEmployeeSchedulesResponse) FromModels(models []model.EmployeeSchedule, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.EmployeeSchedules = make([]EmployeeScheduleResponse, len(models))
	for i, m := range models {
		r.EmployeeSchedules[i].FromModel(m)
	}
}
