package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	loc, err := ParseTimezone("Asia/Kuala_Lumpur")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kuala_Lumpur", loc.String())

	loc, err = ParseTimezone("")
	require.NoError(t, err)
	assert.Equal(t, UTC, loc)

	loc, err = ParseTimezone("Not/AZone")
	assert.Error(t, err)
	assert.Equal(t, UTC, loc)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"22:00", 22 * 60, false},
		{"07:30", 7*60 + 30, false},
		{"00:00:00", 0, false},
		{"23:59:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestInWindowSameDay(t *testing.T) {
	start, _ := ParseClock("09:00")
	end, _ := ParseClock("17:00")

	local, _ := ParseClock("12:00")
	assert.True(t, InWindow(local, start, end))

	local, _ = ParseClock("08:59")
	assert.False(t, InWindow(local, start, end))
}

func TestInWindowWrapsMidnight(t *testing.T) {
	start, _ := ParseClock("22:00")
	end, _ := ParseClock("07:00")

	for clock, want := range map[string]bool{
		"23:30": true,
		"06:30": true,
		"22:00": true,
		"07:00": true,
		"12:00": false,
		"21:59": false,
	} {
		local, err := ParseClock(clock)
		require.NoError(t, err)
		assert.Equal(t, want, InWindow(local, start, end), clock)
	}
}

func TestMinutesOfDay(t *testing.T) {
	loc, _ := ParseTimezone("America/New_York")
	// 18:30 UTC is 14:30 or 13:30 in New York depending on DST; pin a DST date.
	ts := time.Date(2026, 7, 1, 18, 30, 0, 0, time.UTC)
	local := NowInTimezone(ts, loc)
	assert.Equal(t, 14*60+30, MinutesOfDay(local))
}

func TestStartOfDay(t *testing.T) {
	loc, _ := ParseTimezone("Asia/Tokyo")
	ts := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC) // 05:00 next day in Tokyo
	start := StartOfDay(ts, loc)
	assert.Equal(t, 11, start.Day())
	assert.Equal(t, 0, start.Hour())
}
