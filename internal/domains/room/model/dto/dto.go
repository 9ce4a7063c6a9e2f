package dto

import (
	"cine/internal/domains/room/model"
	"cine/shared"
	gDto "cine/shared/dto"
	gModel "cine/shared/model"
	"cine/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

func (c *CreateRoomRequest) ToModel() model.Room {
	return model.Room{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Capacity: c.Capacity,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
			UpdatedAt: timezone.Now(),
		},
	}
}

type UpdateRoomRequest struct {
	Name     string `db:"name"     json:"name"     validate:"omitempty,min=1,max=100"`
	Capacity int    `db:"capacity" json:"capacity" validate:"omitempty,gt=0"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Capacity = model.Capacity
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, m := range models {
		r.Rooms[i].FromModel(m)
	}
}
