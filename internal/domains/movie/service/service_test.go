package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"cine/config"
	otelMocks "cine/infras/otel/mocks"
	s3Mocks "cine/infras/s3/mocks"
	movieMocks "cine/internal/domains/movie/mocks"
	"cine/internal/domains/movie/model"
	"cine/internal/domains/movie/model/dto"
	"cine/internal/domains/movie/service"
	scheduleMocks "cine/internal/domains/showtime/mocks"
	"cine/shared/cache"
	cacheMocks "cine/shared/cache/mocks"
	"cine/shared/failure"
	gRepo "cine/shared/repository"
)

type movieMockSet struct {
	repo      *movieMocks.MockMovie
	schedules *scheduleMocks.MockSchedule
	cache     *cacheMocks.MockRedisCache
	s3        *s3Mocks.MockS3
}

func newService(t *testing.T) (service.Movie, movieMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mocks := movieMockSet{
		repo:      movieMocks.NewMockMovie(ctrl),
		schedules: scheduleMocks.NewMockSchedule(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		s3:        s3Mocks.NewMockS3(ctrl),
	}

	mocks.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mocks.repo, mocks.schedules, cfg, mocks.cache, otelMocks.NewOtel(), mocks.s3)

	return svc, mocks
}

func TestMovieService_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m movieMockSet)
		wantErr   bool
	}{
		{
			name: "successful creation",
			setupMock: func(m movieMockSet) {
				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "repository error",
			setupMock: func(m movieMockSet) {
				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mocks := newService(t)
			tt.setupMock(mocks)

			req := dto.CreateMovieRequest{
				Title:    "Arrival",
				Duration: 116,
			}

			res, err := svc.Create(context.Background(), req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, res.ID)
				assert.Equal(t, 116, res.Duration)
			}
		})
	}
}

func TestMovieService_Get(t *testing.T) {
	svc, mocks := newService(t)

	mocks.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
	mocks.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.Movie{}, gRepo.ErrNoRows)

	_, err := svc.Get(context.Background(), "movie-1")

	assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
}

func TestMovieService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m movieMockSet)
		wantKind  failure.Kind
	}{
		{
			name: "no active schedules",
			setupMock: func(m movieMockSet) {
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				m.schedules.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
				m.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "blocked by active schedules",
			setupMock: func(m movieMockSet) {
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				m.schedules.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
			},
			wantKind: failure.KindConflict,
		},
		{
			name: "movie not found",
			setupMock: func(m movieMockSet) {
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mocks := newService(t)
			tt.setupMock(mocks)

			err := svc.Delete(context.Background(), "movie-1")

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, failure.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMovieService_UploadPoster(t *testing.T) {
	svc, mocks := newService(t)

	header := &multipart.FileHeader{Filename: "arrival.jpg"}

	mocks.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mocks.s3.EXPECT().
		UploadFile(gomock.Any(), gomock.Any(), model.EntityName, gomock.Any(), header, "arrival.jpg").
		Return("https://cdn.example.com/movie/arrival.jpg", nil)
	mocks.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.Equal(t, "https://cdn.example.com/movie/arrival.jpg", fields[model.FieldImageURL])

			return nil
		})

	res, err := svc.UploadPoster(context.Background(), dto.UploadPosterRequest{Poster: header}, "movie-1")

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/movie/arrival.jpg", res.ImageURL)
}

func TestMovieService_Update(t *testing.T) {
	svc, mocks := newService(t)

	mocks.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mocks.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			assert.NotContains(t, fields, model.FieldDuration,
				"running time must not be updatable")

			return nil
		})

	err := svc.Update(context.Background(), dto.UpdateMovieRequest{Title: "Arrival (Director's Cut)"}, "movie-1")

	assert.NoError(t, err)
}
