package service

import (
	"context"
	"errors"
	"fmt"

	"cine/config"
	"cine/infras/otel"
	"cine/internal/domains/shift/model"
	"cine/internal/domains/shift/model/dto"
	"cine/internal/domains/shift/repository"
	"cine/internal/ledger"
	"cine/shared"
	"cine/shared/cache"
	"cine/shared/constant"
	gDto "cine/shared/dto"
	"cine/shared/failure"
	gRepo "cine/shared/repository"
	"cine/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetShift    = "shift:get"
	cacheGetAllShift = "shift:get_all"
	cacheCountShift  = "shift:count"
)

type EmployeeSchedule interface {
	Create(ctx context.Context, req dto.CreateEmployeeScheduleRequest) (dto.EmployeeScheduleResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetEmployeeSchedulesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.EmployeeScheduleResponse, error)
	Update(ctx context.Context, req dto.UpdateEmployeeScheduleRequest, id string) (dto.EmployeeScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	RecordOutcome(ctx context.Context, req dto.RecordOutcomeRequest, id string) (dto.EmployeeScheduleResponse, error)
}

type serviceImpl struct {
	repo   repository.EmployeeSchedule
	boards *ledger.Set
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
}

func New(
	repo repository.EmployeeSchedule,
	boards *ledger.Set,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) EmployeeSchedule {
	return &serviceImpl{
		repo:   repo,
		boards: boards,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateEmployeeScheduleRequest) (res dto.EmployeeScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	shift, err := req.ToModel()
	if err != nil {
		return res, failure.InvalidArgument("work date must use the format "+constant.DayFormat)
	}

	interval, err := shift.Interval()
	if err != nil {
		return res, asIntervalFailure(err)
	}

	if err = s.ensurePrimed(ctx, shift.EmployeeID); err != nil {
		return res, err
	}

	if err = s.boards.Reserve(shift.EmployeeID, shift.ID, interval); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, shift); err != nil {
		s.boards.Release(shift.EmployeeID, shift.ID)

		log.Error().Err(err).Msg("failed to insert shift")

		return res, failure.Persistence(err)
	}

	res.FromModel(shift)

	s.invalidate(ctx, shift.ID)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetEmployeeSchedulesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllShift, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for shifts")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count shifts")

		return res, err
	}

	shifts, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get shifts")

		return res, failure.Persistence(err)
	}

	res.FromModels(shifts, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save shifts to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountShift, req, filter)

	err = s.cache.Get(ctx, cacheKey, &total)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for shift count")

		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count shifts")

		return total, failure.Persistence(err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save shift count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.EmployeeScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetShift, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for shift")

		return res, nil
	}

	shift, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(shift)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save shift to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateEmployeeScheduleRequest, id string) (res dto.EmployeeScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	candidate, err := req.Apply(existing)
	if err != nil {
		return res, failure.InvalidArgument("work date must use the format " + constant.DayFormat)
	}
	candidate.UpdatedAt = timezone.Now()

	interval, err := candidate.Interval()
	if err != nil {
		return res, asIntervalFailure(err)
	}

	oldInterval, err := existing.Interval()
	if err != nil {
		log.Error().Err(err).Str("shiftID", id).Msg("stored shift has an unreadable slot")

		return res, failure.Persistence(err)
	}

	if err = s.ensurePrimed(ctx, existing.EmployeeID); err != nil {
		return res, err
	}
	if err = s.ensurePrimed(ctx, candidate.EmployeeID); err != nil {
		return res, err
	}

	if err = s.boards.Move(existing.EmployeeID, candidate.EmployeeID, id, interval); err != nil {
		return res, err
	}

	updatedFields := map[string]any{
		model.FieldEmployeeID:   candidate.EmployeeID,
		model.FieldWorkDate:     candidate.WorkDate,
		model.FieldStartTime:    candidate.StartTime,
		model.FieldEndTime:      candidate.EndTime,
		model.FieldNotes:        candidate.Notes,
		constant.FieldUpdatedAt: candidate.UpdatedAt,
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		if moveErr := s.boards.Move(candidate.EmployeeID, existing.EmployeeID, id, oldInterval); moveErr != nil {
			log.Error().Err(moveErr).Str("shiftID", id).Msg("failed to restore shift placement")
		}

		log.Error().Err(err).Msg("failed to update shift")

		return res, failure.Persistence(err)
	}

	res.FromModel(candidate)

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete shift")

		return failure.Persistence(err)
	}

	s.boards.Release(existing.EmployeeID, id)

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) RecordOutcome(ctx context.Context, req dto.RecordOutcomeRequest, id string) (res dto.EmployeeScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordOutcome")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	if !model.CanTransition(existing.Status, req.Outcome) {
		return res, failure.InvalidTransition(
			fmt.Sprintf("cannot move shift from %s to %s", existing.Status, req.Outcome),
		)
	}

	existing.Status = req.Outcome
	if req.Notes != "" {
		existing.Notes = req.Notes
	}
	existing.UpdatedAt = timezone.Now()

	updatedFields := map[string]any{
		model.FieldStatus:       existing.Status,
		model.FieldNotes:        existing.Notes,
		constant.FieldUpdatedAt: existing.UpdatedAt,
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to record shift outcome")

		return res, failure.Persistence(err)
	}

	res.FromModel(existing)

	s.invalidate(ctx, id)

	return res, nil
}

// ensurePrimed installs the employee's board from persisted rows on first
// touch, outside any board lock.
func (s *serviceImpl) ensurePrimed(ctx context.Context, employeeID string) error {
	if s.boards.Primed(employeeID) {
		return nil
	}

	shifts, err := s.repo.GetByEmployee(ctx, employeeID)
	if err != nil {
		log.Error().Err(err).Str("employeeID", employeeID).Msg("failed to prime employee board")

		return failure.Persistence(err)
	}

	entries := make([]ledger.Entry, 0, len(shifts))
	for _, shift := range shifts {
		interval, err := shift.Interval()
		if err != nil {
			log.Error().Err(err).Str("shiftID", shift.ID).Msg("skipping shift with unreadable slot")

			continue
		}

		entries = append(entries, ledger.Entry{ID: shift.ID, Interval: interval})
	}

	s.boards.Prime(employeeID, entries)

	return nil
}

func (s *serviceImpl) getByID(ctx context.Context, id string) (model.EmployeeSchedule, error) {
	shift, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		if errors.Is(err, gRepo.ErrNoRows) {
			return model.EmployeeSchedule{}, failure.NotFound(model.EntityName)
		}

		log.Error().Err(err).Msg("failed to get shift")

		return model.EmployeeSchedule{}, failure.Persistence(err)
	}

	return shift, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetShift, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete shift cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllShift)
		shared.InvalidateCaches(c, s.cache, cacheCountShift)
	}()
}

// asIntervalFailure keeps ledger failures as-is and wraps clock parse errors.
func asIntervalFailure(err error) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	return failure.InvalidArgument("start and end must use the format " + constant.ClockFormat)
}
