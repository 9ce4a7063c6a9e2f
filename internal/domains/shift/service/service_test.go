package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cine/config"
	otelMocks "cine/infras/otel/mocks"
	shiftMocks "cine/internal/domains/shift/mocks"
	"cine/internal/domains/shift/model"
	"cine/internal/domains/shift/model/dto"
	"cine/internal/domains/shift/service"
	"cine/internal/ledger"
	cacheMocks "cine/shared/cache/mocks"
	"cine/shared/failure"
	gModel "cine/shared/model"
	gRepo "cine/shared/repository"
	"cine/shared/timezone"
)

func newService(t *testing.T) (service.EmployeeSchedule, *shiftMocks.MockEmployeeSchedule) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := shiftMocks.NewMockEmployeeSchedule(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, ledger.NewSet(), cfg, mockCache, otelMocks.NewOtel())

	return svc, mockRepo
}

func createReq(employeeID, start, end string) dto.CreateEmployeeScheduleRequest {
	return dto.CreateEmployeeScheduleRequest{
		EmployeeID: employeeID,
		WorkDate:   "2026-03-14",
		StartTime:  start,
		EndTime:    end,
	}
}

func storedShift(id, employeeID, status string) model.EmployeeSchedule {
	return model.EmployeeSchedule{
		ID:         id,
		EmployeeID: employeeID,
		WorkDate:   time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		StartTime:  "09:00",
		EndTime:    "17:00",
		Status:     status,
		Metadata:   gModel.Metadata{CreatedAt: timezone.Now(), UpdatedAt: timezone.Now()},
	}
}

func TestShiftService_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-1").Return(nil, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := svc.Create(context.Background(), createReq("emp-1", "09:00", "17:00"))

		require.NoError(t, err)
		assert.Equal(t, model.StatusScheduled, res.Status)
		assert.Equal(t, "2026-03-14", res.WorkDate)
	})

	t.Run("end not after start", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(context.Background(), createReq("emp-1", "17:00", "09:00"))

		assert.Equal(t, failure.KindInvalidInterval, failure.KindOf(err))
	})

	t.Run("overlapping shift for the same employee", func(t *testing.T) {
		svc, mockRepo := newService(t)

		existing := storedShift("shift-1", "emp-1", model.StatusScheduled)
		mockRepo.EXPECT().
			GetByEmployee(gomock.Any(), "emp-1").
			Return([]model.EmployeeSchedule{existing}, nil)

		_, err := svc.Create(context.Background(), createReq("emp-1", "16:00", "20:00"))

		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
		assert.Equal(t, ledger.ConflictDetails{ConflictingID: "shift-1"}, failure.DetailsOf(err))
	})

	t.Run("same slot for another employee is fine", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().
			GetByEmployee(gomock.Any(), "emp-2").
			Return([]model.EmployeeSchedule{}, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.Create(context.Background(), createReq("emp-2", "09:00", "17:00"))

		assert.NoError(t, err)
	})

	t.Run("failed insert releases the slot", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-1").Return(nil, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := svc.Create(context.Background(), createReq("emp-1", "09:00", "17:00"))
		assert.Equal(t, failure.KindPersistence, failure.KindOf(err))

		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err = svc.Create(context.Background(), createReq("emp-1", "09:00", "17:00"))
		assert.NoError(t, err)
	})
}

func TestShiftService_RecordOutcome(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		outcome  string
		wantKind failure.Kind
	}{
		{
			name:    "scheduled to completed",
			status:  model.StatusScheduled,
			outcome: model.StatusCompleted,
		},
		{
			name:    "scheduled to missed",
			status:  model.StatusScheduled,
			outcome: model.StatusMissed,
		},
		{
			name:     "completed is terminal",
			status:   model.StatusCompleted,
			outcome:  model.StatusMissed,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name:     "missed is terminal",
			status:   model.StatusMissed,
			outcome:  model.StatusCompleted,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name:     "repeating the outcome still fails",
			status:   model.StatusCompleted,
			outcome:  model.StatusCompleted,
			wantKind: failure.KindInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := newService(t)

			mockRepo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(storedShift("shift-1", "emp-1", tt.status), nil)

			if tt.wantKind == "" {
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
						assert.Equal(t, tt.outcome, fields[model.FieldStatus])

						return nil
					})
			}

			res, err := svc.RecordOutcome(context.Background(), dto.RecordOutcomeRequest{Outcome: tt.outcome}, "shift-1")

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, failure.KindOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.outcome, res.Status)
			}
		})
	}

	t.Run("unknown shift", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.EmployeeSchedule{}, gRepo.ErrNoRows)

		_, err := svc.RecordOutcome(context.Background(), dto.RecordOutcomeRequest{Outcome: model.StatusCompleted}, "shift-404")

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})
}

func TestShiftService_Update(t *testing.T) {
	existing := storedShift("shift-1", "emp-1", model.StatusScheduled)

	t.Run("notes-only update keeps the slot", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-1").Return([]model.EmployeeSchedule{existing}, nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		notes := "covering for the late show"
		res, err := svc.Update(context.Background(), dto.UpdateEmployeeScheduleRequest{Notes: &notes}, "shift-1")

		assert.NoError(t, err)
		assert.Equal(t, notes, res.Notes)
	})

	t.Run("reassignment conflicts with the target employee's shift", func(t *testing.T) {
		svc, mockRepo := newService(t)

		blocker := storedShift("shift-2", "emp-2", model.StatusScheduled)
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-1").Return([]model.EmployeeSchedule{existing}, nil)
		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-2").Return([]model.EmployeeSchedule{blocker}, nil)

		target := "emp-2"
		_, err := svc.Update(context.Background(), dto.UpdateEmployeeScheduleRequest{EmployeeID: &target}, "shift-1")

		assert.Equal(t, failure.KindConflict, failure.KindOf(err))
		assert.Equal(t, ledger.ConflictDetails{ConflictingID: "shift-2"}, failure.DetailsOf(err))
	})
}

func TestShiftService_Delete(t *testing.T) {
	existing := storedShift("shift-1", "emp-1", model.StatusScheduled)

	t.Run("hard delete frees the slot", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), "shift-1"))

		mockRepo.EXPECT().GetByEmployee(gomock.Any(), "emp-1").Return(nil, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.Create(context.Background(), createReq("emp-1", "09:00", "17:00"))
		assert.NoError(t, err)
	})

	t.Run("unknown shift", func(t *testing.T) {
		svc, mockRepo := newService(t)

		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.EmployeeSchedule{}, gRepo.ErrNoRows)

		err := svc.Delete(context.Background(), "shift-404")

		assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
	})
}
