package service

import (
	"context"
	"errors"
	"fmt"

	"cine/config"
	"cine/infras/otel"
	"cine/infras/s3"
	"cine/internal/domains/movie/model"
	"cine/internal/domains/movie/model/dto"
	"cine/internal/domains/movie/repository"
	scheduleModel "cine/internal/domains/showtime/model"
	scheduleRepo "cine/internal/domains/showtime/repository"
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
	cacheGetMovie    = "movie:get"
	cacheGetAllMovie = "movie:get_all"
	cacheCountMovie  = "movie:count"
)

type Movie interface {
	Create(ctx context.Context, req dto.CreateMovieRequest) (dto.MovieResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetMoviesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.MovieResponse, error)
	Update(ctx context.Context, req dto.UpdateMovieRequest, id string) error
	Delete(ctx context.Context, id string) error
	UploadPoster(ctx context.Context, req dto.UploadPosterRequest, id string) (dto.UploadPosterResponse, error)
}

type serviceImpl struct {
	repo      repository.Movie
	schedules scheduleRepo.Schedule
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	s3        s3.S3
}

func New(
	repo repository.Movie,
	schedules scheduleRepo.Schedule,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Movie {
	return &serviceImpl{
		repo:      repo,
		schedules: schedules,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		s3:        s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateMovieRequest) (res dto.MovieResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	movie := req.ToModel()

	if err = s.repo.Insert(ctx, movie); err != nil {
		log.Error().Err(err).Msg("failed to insert movie")

		return res, failure.Persistence(err)
	}

	res.FromModel(movie)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllMovie)
		shared.InvalidateCaches(c, s.cache, cacheCountMovie)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetMoviesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllMovie, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for movies")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count movies")

		return res, err
	}

	movies, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get movies")

		return res, failure.Persistence(err)
	}

	res.FromModels(movies, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save movies to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountMovie, req, filter)

	err = s.cache.Get(ctx, cacheKey, &total)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for movie count")

		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count movies")

		return total, failure.Persistence(err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save movie count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.MovieResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetMovie, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for movie")

		return res, nil
	}

	movie, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		if errors.Is(err, gRepo.ErrNoRows) {
			return res, failure.NotFound(model.EntityName)
		}

		log.Error().Err(err).Msg("failed to get movie")

		return res, failure.Persistence(fmt.Errorf("failed to get movie: %w", err))
	}

	res.FromModel(movie)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save movie to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateMovieRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check movie existence")

		return failure.Persistence(err)
	}

	if !exist {
		log.Error().Msg("movie not found")

		return failure.NotFound(model.EntityName)
	}

	updatedFields := shared.TransformFields(req)
	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update movie")

		return failure.Persistence(fmt.Errorf("failed to update movie: %w", err))
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check movie existence")

		return failure.Persistence(err)
	}

	if !exist {
		log.Error().Msg("movie not found")

		return failure.NotFound(model.EntityName)
	}

	active, err := s.activeShowtimes(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active schedules for movie")

		return failure.Persistence(err)
	}

	if active > 0 {
		return failure.Conflict(
			"movie is referenced by active schedules",
			map[string]int{"active_schedules": active},
		)
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete movie")

		return failure.Persistence(fmt.Errorf("failed to delete movie: %w", err))
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UploadPoster(ctx context.Context, req dto.UploadPosterRequest, id string) (res dto.UploadPosterResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadPoster")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check movie existence")

		return res, failure.Persistence(err)
	}

	if !exist {
		log.Error().Msg("movie not found")

		return res, failure.NotFound(model.EntityName)
	}

	bucketName := s.cfg.External.S3.BucketName

	url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.PosterFile, req.Poster, req.Poster.Filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload poster to S3")

		return res, fmt.Errorf("failed to upload poster to S3: %w", err)
	}

	updatedFields := map[string]any{
		model.FieldImageURL:     url,
		constant.FieldUpdatedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to persist poster URL")

		return res, failure.Persistence(fmt.Errorf("failed to persist poster URL: %w", err))
	}

	res.FromModel(url, req.Poster.Filename)

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) activeShowtimes(ctx context.Context, movieID string) (int, error) {
	return s.schedules.Count(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    scheduleModel.FieldMovieID,
				Value:    movieID,
				Operator: gDto.FilterOperatorEq,
				Table:    scheduleModel.TableName,
			},
			gDto.Filter{
				Field:    scheduleModel.FieldIsDeleted,
				Value:    false,
				Operator: gDto.FilterOperatorEq,
				Table:    scheduleModel.TableName,
			},
		},
	})
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetMovie, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete movie cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllMovie)
		shared.InvalidateCaches(c, s.cache, cacheCountMovie)
	}()
}
