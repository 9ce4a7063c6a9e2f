package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cine/config"
	kafkaMocks "cine/infras/kafka/mocks"
	otelMocks "cine/infras/otel/mocks"
	movieMocks "cine/internal/domains/movie/mocks"
	movieModel "cine/internal/domains/movie/model"
	roomMocks "cine/internal/domains/room/mocks"
	scheduleMocks "cine/internal/domains/showtime/mocks"
	"cine/internal/domains/showtime/model"
	"cine/internal/domains/showtime/model/dto"
	"cine/internal/domains/showtime/service"
	"cine/internal/ledger"
	"cine/shared/cache"
	cacheMocks "cine/shared/cache/mocks"
	"cine/shared/failure"
	gModel "cine/shared/model"
	gRepo "cine/shared/repository"
	"cine/shared/timezone"
)

type scheduleMockSet struct {
	repo   *scheduleMocks.MockSchedule
	movies *movieMocks.MockMovie
	rooms  *roomMocks.MockRoom
	cache  *cacheMocks.MockRedisCache
	events *kafkaMocks.MockClient
	boards *ledger.Set
}

func newService(t *testing.T) (service.Schedule, scheduleMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mocks := scheduleMockSet{
		repo:   scheduleMocks.NewMockSchedule(ctrl),
		movies: movieMocks.NewMockMovie(ctrl),
		rooms:  roomMocks.NewMockRoom(ctrl),
		cache:  cacheMocks.NewMockRedisCache(ctrl),
		events: kafkaMocks.NewMockClient(ctrl),
		boards: ledger.NewSet(),
	}

	mocks.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.events.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Topics.ShowtimeEvents = "cine.showtime.events"

	svc := service.New(
		mocks.repo, mocks.movies, mocks.rooms, mocks.boards,
		cfg, mocks.cache, otelMocks.NewOtel(), mocks.events,
	)

	return svc, mocks
}

// expectValidSlot wires the lookups a successful validation makes: a movie
// with the given running time and an existing room.
func (m scheduleMockSet) expectValidSlot(durationMinutes int) {
	m.movies.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(movieModel.Movie{ID: "movie-1", Duration: durationMinutes}, nil).
		AnyTimes()
	m.rooms.EXPECT().
		Exist(gomock.Any(), gomock.Any()).
		Return(true, nil).
		AnyTimes()
}

func (m scheduleMockSet) expectEmptyBoards() {
	m.repo.EXPECT().
		GetActiveByRoom(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func createReq(roomID string, start, end time.Time) dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		MovieID:     "b2f7c0a4-51f7-41a3-9c3e-0d6a3b1f9e11",
		RoomID:      roomID,
		StartTime:   start,
		EndTime:     end,
		TicketPrice: 12.50,
	}
}

func storedSchedule(id, roomID string, start, end time.Time) model.Schedule {
	return model.Schedule{
		ID:          id,
		MovieID:     "b2f7c0a4-51f7-41a3-9c3e-0d6a3b1f9e11",
		RoomID:      roomID,
		StartTime:   start,
		EndTime:     end,
		TicketPrice: 12.50,
		Metadata:    gModel.Metadata{CreatedAt: timezone.Now(), UpdatedAt: timezone.Now()},
	}
}

func TestScheduleService_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))

		assert.NoError(t, err)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("end before start", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(context.Background(), createReq("room-1", at(12, 0), at(10, 0)))

		assert.Equal(t, failure.KindInvalidInterval, failure.KindOf(err))
	})

	t.Run("slot shorter than the movie", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(150)

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))

		assert.Equal(t, failure.KindInvalidArgument, failure.KindOf(err))
	})

	t.Run("unknown movie", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.movies.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(movieModel.Movie{}, gRepo.ErrNoRows)

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.movies.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(movieModel.Movie{ID: "movie-1", Duration: 100}, nil)
		mocks.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})

	t.Run("overlapping slot names the blocking schedule", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		first, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), createReq("room-1", at(11, 0), at(13, 0)))

		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
		assert.Equal(t, ledger.ConflictDetails{ConflictingID: first.ID}, failure.DetailsOf(err))
	})

	t.Run("different rooms never conflict", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), createReq("room-2", at(10, 0), at(12, 0)))
		assert.NoError(t, err)
	})

	t.Run("failed insert releases the slot", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()

		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.Equal(t, failure.KindPersistence, failure.KindOf(err))

		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err = svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.NoError(t, err, "slot must be bookable again after a failed persist")
	})

	t.Run("persisted rows prime the board", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)

		existing := storedSchedule("show-1", "room-1", at(10, 0), at(12, 0))
		mocks.repo.EXPECT().
			GetActiveByRoom(gomock.Any(), "room-1").
			Return([]model.Schedule{existing}, nil)

		_, err := svc.Create(context.Background(), createReq("room-1", at(11, 0), at(13, 0)))

		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
		assert.Equal(t, ledger.ConflictDetails{ConflictingID: "show-1"}, failure.DetailsOf(err))
	})
}

func TestScheduleService_Create_Concurrent(t *testing.T) {
	svc, mocks := newService(t)
	mocks.expectValidSlot(100)
	mocks.expectEmptyBoards()
	mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	const attempts = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0))); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent create may win the slot")
}

func TestScheduleService_Update(t *testing.T) {
	existing := storedSchedule("show-1", "room-1", at(10, 0), at(12, 0))

	t.Run("price-only update never conflicts", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()

		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, 15.0, fields[model.FieldTicketPrice])

				return nil
			})

		price := 15.0
		res, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{TicketPrice: &price}, "show-1")

		assert.NoError(t, err)
		assert.Equal(t, 15.0, res.TicketPrice)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, mocks := newService(t)

		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Schedule{}, gRepo.ErrNoRows)

		_, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{}, "show-404")

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})

	t.Run("room change moves the reservation", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		newRoom := "room-2"
		_, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{RoomID: &newRoom}, "show-1")
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.NoError(t, err, "old room slot must be free after the move")

		_, err = svc.Create(context.Background(), createReq("room-2", at(10, 0), at(12, 0)))
		assert.Equal(t, failure.KindConflict, failure.KindOf(err), "new room slot must be held")
	})

	t.Run("destination conflict keeps the original placement", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)

		blocker := storedSchedule("show-2", "room-2", at(11, 0), at(13, 0))
		mocks.repo.EXPECT().GetActiveByRoom(gomock.Any(), "room-1").Return([]model.Schedule{existing}, nil).AnyTimes()
		mocks.repo.EXPECT().GetActiveByRoom(gomock.Any(), "room-2").Return([]model.Schedule{blocker}, nil).AnyTimes()
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)

		newRoom := "room-2"
		_, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{RoomID: &newRoom}, "show-1")

		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
		assert.Equal(t, ledger.ConflictDetails{ConflictingID: "show-2"}, failure.DetailsOf(err))

		_, err = svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.Equal(t, failure.KindConflict, failure.KindOf(err), "original slot must still be held")
	})

	t.Run("failed persist restores the old placement", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		newRoom := "room-2"
		_, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{RoomID: &newRoom}, "show-1")
		assert.Equal(t, failure.KindPersistence, failure.KindOf(err))

		_, err = svc.Create(context.Background(), createReq("room-2", at(10, 0), at(12, 0)))
		assert.NoError(t, err, "destination slot must be free again after the rollback")

		_, err = svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.Equal(t, failure.KindConflict, failure.KindOf(err), "source slot must be held again after the rollback")
	})

	t.Run("rollback losing the source slot drops the stale reservation", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.expectEmptyBoards()
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		// Persistence runs outside the locks, so another create can take
		// the vacated source slot before the rollback.
		mocks.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ map[string]any, _ any) error {
				_, err := svc.Create(ctx, createReq("room-1", at(10, 0), at(12, 0)))
				require.NoError(t, err)

				return errors.New("database error")
			})

		newRoom := "room-2"
		_, err := svc.Update(context.Background(), dto.UpdateScheduleRequest{RoomID: &newRoom}, "show-1")
		assert.Equal(t, failure.KindPersistence, failure.KindOf(err))

		_, err = svc.Create(context.Background(), createReq("room-2", at(10, 0), at(12, 0)))
		assert.NoError(t, err, "destination slot must not stay held by the failed update")
	})
}

func TestScheduleService_Delete(t *testing.T) {
	existing := storedSchedule("show-1", "room-1", at(10, 0), at(12, 0))

	t.Run("soft delete frees the slot", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, true, fields[model.FieldIsDeleted])

				return nil
			})

		require.NoError(t, svc.Delete(context.Background(), "show-1"))

		mocks.repo.EXPECT().GetActiveByRoom(gomock.Any(), "room-1").Return(nil, nil)
		mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.NoError(t, err, "deleted slot must be immediately bookable")
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, mocks := newService(t)

		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Schedule{}, gRepo.ErrNoRows)

		err := svc.Delete(context.Background(), "show-404")

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})

	t.Run("failed persist keeps the slot held", func(t *testing.T) {
		svc, mocks := newService(t)
		mocks.expectValidSlot(100)
		mocks.repo.EXPECT().GetActiveByRoom(gomock.Any(), "room-1").Return([]model.Schedule{existing}, nil).AnyTimes()
		mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mocks.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		err := svc.Delete(context.Background(), "show-1")
		assert.Equal(t, failure.KindPersistence, failure.KindOf(err))

		_, err = svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))
		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
	})
}

func TestScheduleService_Get(t *testing.T) {
	svc, mocks := newService(t)

	existing := storedSchedule("show-1", "room-1", at(10, 0), at(12, 0))

	mocks.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
	mocks.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)

	res, err := svc.Get(context.Background(), "show-1")

	assert.NoError(t, err)
	assert.Equal(t, "show-1", res.ID)
	assert.Equal(t, "room-1", res.RoomID)
}

func TestScheduleService_PublishFailureNotSurfaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mocks := scheduleMockSet{
		repo:   scheduleMocks.NewMockSchedule(ctrl),
		movies: movieMocks.NewMockMovie(ctrl),
		rooms:  roomMocks.NewMockRoom(ctrl),
		cache:  cacheMocks.NewMockRedisCache(ctrl),
		events: kafkaMocks.NewMockClient(ctrl),
		boards: ledger.NewSet(),
	}

	mocks.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mocks.events.EXPECT().
		SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("broker unavailable")).
		AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(
		mocks.repo, mocks.movies, mocks.rooms, mocks.boards,
		cfg, mocks.cache, otelMocks.NewOtel(), mocks.events,
	)

	mocks.expectValidSlot(100)
	mocks.expectEmptyBoards()
	mocks.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Create(context.Background(), createReq("room-1", at(10, 0), at(12, 0)))

	assert.NoError(t, err, "event publish failures must not fail the write")
}
