package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cine/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestFailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind failure.Kind
	}{
		{
			name:     "not found",
			err:      failure.NotFound("movie"),
			wantCode: http.StatusNotFound,
			wantKind: failure.KindNotFound,
		},
		{
			name:     "invalid interval",
			err:      failure.InvalidInterval("end_time must be after start_time"),
			wantCode: http.StatusBadRequest,
			wantKind: failure.KindInvalidInterval,
		},
		{
			name:     "invalid argument",
			err:      failure.InvalidArgument("ticket_price must not be negative"),
			wantCode: http.StatusBadRequest,
			wantKind: failure.KindInvalidArgument,
		},
		{
			name:     "conflict",
			err:      failure.Conflict("room already booked", map[string]string{"conflicting_id": "abc"}),
			wantCode: http.StatusConflict,
			wantKind: failure.KindConflict,
		},
		{
			name:     "invalid transition",
			err:      failure.InvalidTransition("shift already completed"),
			wantCode: http.StatusConflict,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name:     "persistence",
			err:      failure.Persistence(errors.New("connection reset")),
			wantCode: http.StatusInternalServerError,
			wantKind: failure.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantKind, failure.KindOf(tt.err))
		})
	}
}

func TestFailureMessages(t *testing.T) {
	err := failure.NotFound("showtime")
	assert.Equal(t, "showtime not found", err.Error())

	err = failure.InvalidArgument("duration must be greater than 0")
	assert.Equal(t, "duration must be greater than 0", err.Error())
}

func TestGetCodeUntypedError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("boom")))
	assert.Equal(t, failure.KindPersistence, failure.KindOf(errors.New("boom")))
}

func TestGetCodeWrappedFailure(t *testing.T) {
	wrapped := fmt.Errorf("creating showtime: %w", failure.Conflict("slot taken", nil))

	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
	assert.Equal(t, failure.KindConflict, failure.KindOf(wrapped))
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := failure.Persistence(cause)

	assert.ErrorIs(t, err, cause)
	// The cause never leaks into the response details.
	assert.Nil(t, failure.DetailsOf(err))
}

func TestConflictDetails(t *testing.T) {
	details := map[string]string{"conflicting_id": "st-1"}
	err := failure.Conflict("room already booked", details)

	assert.Equal(t, details, failure.DetailsOf(err))
}

func TestBadRequestNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.Persistence(nil))
}
