package model

import "time"

// Metadata carries the row timestamps shared by every persisted entity.
type Metadata struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
