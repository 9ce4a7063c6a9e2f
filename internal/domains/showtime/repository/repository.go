package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"cine/infras/otel"
	"cine/infras/postgres"
	"cine/internal/domains/showtime/model"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	gRepo "cine/shared/repository"
)

type Schedule interface {
	Insert(ctx context.Context, model model.Schedule) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Schedule, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Schedule, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetActiveByRoom(ctx context.Context, roomID string) ([]model.Schedule, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Schedule]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Schedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Schedule](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetActiveByRoom loads every live schedule in a room, the rows a fresh
// ledger board is primed from.
func (repo *repositoryImpl) GetActiveByRoom(ctx context.Context, roomID string) (schedules []model.Schedule, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetActiveByRoom")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s = $1 AND %s = FALSE",
		model.TableName, model.FieldRoomID, model.FieldIsDeleted,
	)

	scope.SetAttributes(map[string]any{constant.OtelQueryAttributeKey: query})

	if err = repo.db.Read.SelectContext(ctx, &schedules, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to get active schedules for room: %w", err)
	}

	return schedules, nil
}
