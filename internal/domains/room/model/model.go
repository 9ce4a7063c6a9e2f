package model

import "cine/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldName     = "name"
	FieldCapacity = "capacity"
)

type Room struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
	model.Metadata
}
