package repository

import (
	"context"
	"testing"

	"cine/shared/dto"
	sharedModel "cine/shared/model"

	"github.com/stretchr/testify/assert"
)

type fixtureRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	sharedModel.Metadata
}

func TestNewRepository(t *testing.T) {
	repo := NewRepository[fixtureRow]("fixture", "fixtures", "id", nil, nil)

	t.Run("columns come from db tags including embedded metadata", func(t *testing.T) {
		assert.Equal(t, []string{"id", "name", "created_at", "updated_at"}, repo.columns)
	})

	t.Run("select defaults to every tagged column", func(t *testing.T) {
		assert.Equal(t, "id, name, created_at, updated_at", repo.selectColumns(nil))
	})

	t.Run("explicit columns narrow the projection", func(t *testing.T) {
		assert.Equal(t, "id, name", repo.selectColumns([]string{"id", "name"}))
	})
}

func TestRepositorySignatures(t *testing.T) {
	repo := NewRepository[fixtureRow]("fixture", "fixtures", "id", nil, nil)

	// Column projections are optional on reads; domain interfaces rely on
	// this exact shape.
	var get func(context.Context, dto.FilterGroup, ...string) (fixtureRow, error) = repo.Get
	var getAll func(context.Context, dto.QueryParams, dto.FilterGroup, ...string) ([]fixtureRow, error) = repo.GetAll

	assert.NotNil(t, get)
	assert.NotNil(t, getAll)
}
