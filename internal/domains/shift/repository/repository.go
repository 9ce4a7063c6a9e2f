package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"cine/infras/otel"
	"cine/infras/postgres"
	"cine/internal/domains/shift/model"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	gRepo "cine/shared/repository"
)

type EmployeeSchedule interface {
	Insert(ctx context.Context, model model.EmployeeSchedule) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.EmployeeSchedule, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.EmployeeSchedule, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetByEmployee(ctx context.Context, employeeID string) ([]model.EmployeeSchedule, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.EmployeeSchedule]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) EmployeeSchedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.EmployeeSchedule](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByEmployee loads every shift of one employee, the rows a fresh ledger
// board is primed from.
func (repo *repositoryImpl) GetByEmployee(ctx context.Context, employeeID string) (schedules []model.EmployeeSchedule, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetByEmployee")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s = $1",
		model.TableName, model.FieldEmployeeID,
	)

	scope.SetAttributes(map[string]any{constant.OtelQueryAttributeKey: query})

	if err = repo.db.Read.SelectContext(ctx, &schedules, query, employeeID); err != nil {
		return nil, fmt.Errorf("failed to get shifts for employee: %w", err)
	}

	return schedules, nil
}
