package service

import (
	"context"
	"errors"
	"time"

	"cine/config"
	"cine/infras/kafka"
	"cine/infras/otel"
	movieModel "cine/internal/domains/movie/model"
	movieRepo "cine/internal/domains/movie/repository"
	roomModel "cine/internal/domains/room/model"
	roomRepo "cine/internal/domains/room/repository"
	"cine/internal/domains/showtime/model"
	"cine/internal/domains/showtime/model/dto"
	"cine/internal/domains/showtime/repository"
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
	cacheGetSchedule    = "schedule:get"
	cacheGetAllSchedule = "schedule:get_all"
	cacheCountSchedule  = "schedule:count"
)

const (
	EventScheduleCreated = "showtime.created"
	EventScheduleUpdated = "showtime.updated"
	EventScheduleDeleted = "showtime.deleted"
)

// ScheduleEvent is the kafka payload for schedule lifecycle changes.
type ScheduleEvent struct {
	Event    string               `json:"event"`
	Schedule dto.ScheduleResponse `json:"schedule"`
}

type Schedule interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest) (dto.ScheduleResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSchedulesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ScheduleResponse, error)
	Update(ctx context.Context, req dto.UpdateScheduleRequest, id string) (dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo   repository.Schedule
	movies movieRepo.Movie
	rooms  roomRepo.Room
	boards *ledger.Set
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
	events kafka.Client
}

func New(
	repo repository.Schedule,
	movies movieRepo.Movie,
	rooms roomRepo.Room,
	boards *ledger.Set,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	events kafka.Client,
) Schedule {
	return &serviceImpl{
		repo:   repo,
		movies: movies,
		rooms:  rooms,
		boards: boards,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
		events: events,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateScheduleRequest) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedule := req.ToModel()

	interval, err := s.validate(ctx, schedule)
	if err != nil {
		return res, err
	}

	if err = s.ensurePrimed(ctx, schedule.RoomID); err != nil {
		return res, err
	}

	if err = s.boards.Reserve(schedule.RoomID, schedule.ID, interval); err != nil {
		return res, err
	}

	// Persistence runs outside the board lock; the reservation already
	// guards the slot against concurrent writers.
	if err = s.repo.Insert(ctx, schedule); err != nil {
		s.boards.Release(schedule.RoomID, schedule.ID)

		log.Error().Err(err).Msg("failed to insert schedule")

		return res, failure.Persistence(err)
	}

	res.FromModel(schedule)

	s.publish(ctx, EventScheduleCreated, res)
	s.invalidate(ctx, schedule.ID)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSchedulesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter = activeOnly(filter)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSchedule, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for schedules")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedules")

		return res, err
	}

	schedules, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedules")

		return res, failure.Persistence(err)
	}

	res.FromModels(schedules, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedules to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter = activeOnly(filter)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSchedule, req, filter)

	err = s.cache.Get(ctx, cacheKey, &total)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for schedule count")

		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedules")

		return total, failure.Persistence(err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSchedule, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for schedule")

		return res, nil
	}

	schedule, err := s.getActive(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(schedule)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateScheduleRequest, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.getActive(ctx, id)
	if err != nil {
		return res, err
	}

	candidate := req.Apply(existing)
	candidate.UpdatedAt = timezone.Now()

	interval, err := s.validate(ctx, candidate)
	if err != nil {
		return res, err
	}

	if err = s.ensurePrimed(ctx, existing.RoomID); err != nil {
		return res, err
	}
	if err = s.ensurePrimed(ctx, candidate.RoomID); err != nil {
		return res, err
	}

	if err = s.boards.Move(existing.RoomID, candidate.RoomID, id, interval); err != nil {
		return res, err
	}

	updatedFields := map[string]any{
		model.FieldMovieID:      candidate.MovieID,
		model.FieldRoomID:       candidate.RoomID,
		model.FieldStartTime:    candidate.StartTime,
		model.FieldEndTime:      candidate.EndTime,
		model.FieldTicketPrice:  candidate.TicketPrice,
		constant.FieldUpdatedAt: candidate.UpdatedAt,
	}

	if err = s.repo.Update(ctx, updatedFields, activeByID(id)); err != nil {
		// Put the old placement back so the board matches the stored row.
		// If the vacated slot was taken in the meantime, drop the stale
		// reservation instead of holding a slot the store never recorded.
		if moveErr := s.boards.Move(candidate.RoomID, existing.RoomID, id, existing.Interval()); moveErr != nil {
			s.boards.Release(candidate.RoomID, id)

			log.Error().Err(moveErr).Str("scheduleID", id).Msg("failed to restore schedule placement")
		}

		log.Error().Err(err).Msg("failed to update schedule")

		return res, failure.Persistence(err)
	}

	res.FromModel(candidate)

	s.publish(ctx, EventScheduleUpdated, res)
	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.getActive(ctx, id)
	if err != nil {
		return err
	}

	updatedFields := map[string]any{
		model.FieldIsDeleted:    true,
		constant.FieldUpdatedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, updatedFields, activeByID(id)); err != nil {
		log.Error().Err(err).Msg("failed to delete schedule")

		return failure.Persistence(err)
	}

	// The slot frees up only once the soft delete is durable.
	s.boards.Release(existing.RoomID, id)

	var res dto.ScheduleResponse
	res.FromModel(existing)

	s.publish(ctx, EventScheduleDeleted, res)
	s.invalidate(ctx, id)

	return nil
}

// validate checks the full slot invariants for a candidate row and returns
// its interval.
func (s *serviceImpl) validate(ctx context.Context, candidate model.Schedule) (ledger.Interval, error) {
	interval, err := ledger.NewInterval(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return ledger.Interval{}, err
	}

	if candidate.TicketPrice < 0 {
		return ledger.Interval{}, failure.InvalidArgument("ticket price must not be negative")
	}

	movie, err := s.movies.Get(ctx, shared.FilterByID(candidate.MovieID, movieModel.FieldID, movieModel.TableName))
	if err != nil {
		if errors.Is(err, gRepo.ErrNoRows) {
			return ledger.Interval{}, failure.NotFound(movieModel.EntityName)
		}

		log.Error().Err(err).Msg("failed to get movie for schedule")

		return ledger.Interval{}, failure.Persistence(err)
	}

	if interval.Duration() < time.Duration(movie.Duration)*constant.MinuteDuration {
		return ledger.Interval{}, failure.InvalidArgument("slot is shorter than the movie running time")
	}

	roomExists, err := s.rooms.Exist(ctx, shared.FilterByID(candidate.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return ledger.Interval{}, failure.Persistence(err)
	}

	if !roomExists {
		return ledger.Interval{}, failure.NotFound(roomModel.EntityName)
	}

	return interval, nil
}

// ensurePrimed installs the room's board from persisted rows on first touch.
// The load runs outside any board lock; Prime discards the result if another
// writer got there first.
func (s *serviceImpl) ensurePrimed(ctx context.Context, roomID string) error {
	if s.boards.Primed(roomID) {
		return nil
	}

	active, err := s.repo.GetActiveByRoom(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Msg("failed to prime room board")

		return failure.Persistence(err)
	}

	entries := make([]ledger.Entry, len(active))
	for i, schedule := range active {
		entries[i] = schedule.Entry()
	}

	s.boards.Prime(roomID, entries)

	return nil
}

func (s *serviceImpl) getActive(ctx context.Context, id string) (model.Schedule, error) {
	schedule, err := s.repo.Get(ctx, activeByID(id))
	if err != nil {
		if errors.Is(err, gRepo.ErrNoRows) {
			return model.Schedule{}, failure.NotFound(model.EntityName)
		}

		log.Error().Err(err).Msg("failed to get schedule")

		return model.Schedule{}, failure.Persistence(err)
	}

	return schedule, nil
}

func (s *serviceImpl) publish(ctx context.Context, event string, schedule dto.ScheduleResponse) {
	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key:   schedule.ID,
			Value: ScheduleEvent{Event: event, Schedule: schedule},
		}

		if err := s.events.SendMessages(c, s.cfg.Kafka.Topics.ShowtimeEvents, message); err != nil {
			log.Error().Err(err).Str("event", event).Str("scheduleID", schedule.ID).Msg("failed to publish schedule event")
		}
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSchedule, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete schedule cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
		shared.InvalidateCaches(c, s.cache, cacheCountSchedule)
	}()
}

// activeByID matches one live row; soft-deleted rows are invisible to reads
// and writes alike.
func activeByID(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldIsDeleted,
				Value:    false,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}

// activeOnly appends the soft-delete guard to a caller-supplied filter.
func activeOnly(filter gDto.FilterGroup) gDto.FilterGroup {
	guard := gDto.Filter{
		Field:    model.FieldIsDeleted,
		Value:    false,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}

	if filter.Operator == "" {
		filter.Operator = gDto.FilterGroupOperatorAnd
	}

	if filter.Operator == gDto.FilterGroupOperatorAnd {
		filter.Filters = append(filter.Filters, guard)

		return filter
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{filter, guard},
	}
}
