// Package timezone provides timezone utilities for the athena server.
//
// This package handles IANA timezone parsing and local time-of-day math
// so that quiet-hours checks behave consistently across the application.
package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Kuala_Lumpur").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// NowInTimezone returns the given instant in the given timezone.
func NowInTimezone(now time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return now.In(tz)
}

// MinutesOfDay returns the minutes elapsed since local midnight for t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseClock parses a local time-of-day string ("HH:MM" or "HH:MM:SS")
// into minutes since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", clock)
	}

	return hour*60 + minute, nil
}

// InWindow reports whether local (minutes since midnight) falls inside the
// [start, end] window. A window with end < start wraps past midnight, in
// which case membership is local >= start OR local <= end.
func InWindow(local, start, end int) bool {
	if start <= end {
		return local >= start && local <= end
	}
	return local >= start || local <= end
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}
