package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cine/internal/ledger"
	"cine/shared/failure"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func interval(t *testing.T, start, end time.Time) ledger.Interval {
	t.Helper()

	iv, err := ledger.NewInterval(start, end)
	assert.NoError(t, err)

	return iv
}

func TestNewInterval(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{
			name:  "valid interval",
			start: at(10, 0),
			end:   at(12, 0),
		},
		{
			name:    "end equals start",
			start:   at(10, 0),
			end:     at(10, 0),
			wantErr: true,
		},
		{
			name:    "end before start",
			start:   at(12, 0),
			end:     at(10, 0),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := ledger.NewInterval(tt.start, tt.end)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, failure.KindInvalidInterval, failure.KindOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.end.Sub(tt.start), iv.Duration())
			}
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    ledger.Interval
		b    ledger.Interval
		want bool
	}{
		{
			name: "partial overlap",
			a:    interval(t, at(10, 0), at(12, 0)),
			b:    interval(t, at(11, 0), at(13, 0)),
			want: true,
		},
		{
			name: "contained",
			a:    interval(t, at(10, 0), at(14, 0)),
			b:    interval(t, at(11, 0), at(12, 0)),
			want: true,
		},
		{
			name: "identical",
			a:    interval(t, at(10, 0), at(12, 0)),
			b:    interval(t, at(10, 0), at(12, 0)),
			want: true,
		},
		{
			name: "back to back",
			a:    interval(t, at(10, 0), at(12, 0)),
			b:    interval(t, at(12, 0), at(14, 0)),
			want: false,
		},
		{
			name: "disjoint",
			a:    interval(t, at(10, 0), at(11, 0)),
			b:    interval(t, at(13, 0), at(14, 0)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}
