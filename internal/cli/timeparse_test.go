package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"2026-08-28 09:30", time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC), false},
		{"2026-08-28 09:30:15", time.Date(2026, 8, 28, 9, 30, 15, 0, time.UTC), false},
		{"2026-08-28T09:30:00Z", time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC), false},
		{"not a time", time.Time{}, true},
		{"2026-08-28", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDateTime(tt.input, time.UTC)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got))
		})
	}
}

func TestParseClockOnDate(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	got, err := parseClockOnDate("14:45", date, time.UTC)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 8, 28, 14, 45, 0, 0, time.UTC).Equal(got))

	_, err = parseClockOnDate("25:99", date, time.UTC)
	require.Error(t, err)
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0m", formatSeconds(0))
	assert.Equal(t, "45m", formatSeconds(45*60))
	assert.Equal(t, "1h 0m", formatSeconds(3600))
	assert.Equal(t, "2h 15m", formatSeconds(2*3600+15*60))
}
