package model

import "cine/shared/model"

const (
	TableName  = "movies"
	EntityName = "movie"

	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDuration    = "duration"
	FieldImageURL    = "image_url"
	FieldTrailerURL  = "trailer_url"
)

// Duration is the running time in minutes.
type Movie struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Duration    int    `db:"duration"`
	ImageURL    string `db:"image_url"`
	TrailerURL  string `db:"trailer_url"`
	model.Metadata
}
