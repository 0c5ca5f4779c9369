package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func days(loc *time.Location, dates ...string) []time.Time {
	times := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.ParseInLocation("2006-01-02 15:04", d, loc)
		if err != nil {
			panic(err)
		}
		times = append(times, t)
	}
	return times
}

func TestCurrentStreak(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{name: "no completions", times: nil, want: 0},
		{name: "single day", times: days(loc, "2025-03-12 09:00"), want: 1},
		{name: "three contiguous days", times: days(loc, "2025-03-10 09:00", "2025-03-11 09:00", "2025-03-12 09:00"), want: 3},
		{name: "gap breaks the chain", times: days(loc, "2025-03-10 09:00", "2025-03-12 09:00"), want: 1},
		{name: "several completions on one day count once", times: days(loc, "2025-03-11 08:00", "2025-03-11 20:00", "2025-03-12 07:00"), want: 2},
		{name: "unordered input", times: days(loc, "2025-03-12 09:00", "2025-03-10 09:00", "2025-03-11 09:00"), want: 3},
		{name: "across the spring DST change", times: days(loc, "2025-03-08 22:00", "2025-03-09 22:00", "2025-03-10 22:00"), want: 3},
		{name: "only the most recent run counts", times: days(loc, "2025-03-01 09:00", "2025-03-02 09:00", "2025-03-03 09:00", "2025-03-05 09:00", "2025-03-06 09:00"), want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.times, loc))
		})
	}
}

func TestCurrentStreakUsesReferenceZone(t *testing.T) {
	loc := newYork(t)
	// 23:30 and 00:30 New York time are different days there but the same day in UTC
	times := days(loc, "2025-03-09 23:30", "2025-03-10 00:30")

	assert.Equal(t, 2, CurrentStreak(times, loc))
	assert.Equal(t, 1, CurrentStreak(times, time.UTC))
}

func TestCurrentStreakIgnoresTimeSinceLastCompletion(t *testing.T) {
	loc := newYork(t)
	times := days(loc, "2020-01-01 09:00", "2020-01-02 09:00")
	assert.Equal(t, 2, CurrentStreak(times, loc))
}

func TestLongestStreak(t *testing.T) {
	loc := newYork(t)

	assert.Equal(t, 0, LongestStreak(nil, loc))
	assert.Equal(t, 3, LongestStreak(days(loc,
		"2025-03-01 09:00", "2025-03-02 09:00", "2025-03-03 09:00",
		"2025-03-05 09:00", "2025-03-06 09:00",
	), loc))
	assert.Equal(t, 4, LongestStreak(days(loc,
		"2025-02-01 09:00",
		"2025-03-03 09:00", "2025-03-04 09:00", "2025-03-05 09:00", "2025-03-06 09:00",
	), loc))
}

func TestWeekStart(t *testing.T) {
	loc := newYork(t)

	wednesday := time.Date(2025, time.March, 12, 10, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, loc), WeekStart(wednesday, loc))

	sunday := time.Date(2025, time.March, 9, 18, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, loc), WeekStart(sunday, loc))

	// Saturday night in New York is already Sunday in UTC
	saturdayNight := time.Date(2025, time.March, 15, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, loc), WeekStart(saturdayNight.UTC(), loc))
}

func TestCountSince(t *testing.T) {
	loc := newYork(t)
	start := time.Date(2025, time.March, 9, 0, 0, 0, 0, loc)
	times := days(loc, "2025-03-08 23:59", "2025-03-09 00:00", "2025-03-12 10:00")

	assert.Equal(t, 2, CountSince(times, start))
}

func TestThemeWeekNumber(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		date string
		want int
	}{
		{"2025-01-01 12:00", 1},  // Wednesday before the first Monday
		{"2025-01-05 12:00", 1},  // Sunday
		{"2025-01-06 12:00", 2},  // first Monday
		{"2025-12-31 12:00", 53}, // Wednesday of the last week
		{"2024-01-01 12:00", 2},  // the year starts on a Monday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, ThemeWeekNumber(days(loc, tt.date)[0], loc))
		})
	}
}

func TestNextThreshold(t *testing.T) {
	assert.Equal(t, 5, NextThreshold(MilestoneThresholds, 0))
	assert.Equal(t, 10, NextThreshold(MilestoneThresholds, 5))
	assert.Equal(t, 50, NextThreshold(MilestoneThresholds, 49))
	assert.Equal(t, 100, NextThreshold(MilestoneThresholds, 100))
	assert.Equal(t, 100, NextThreshold(MilestoneThresholds, 250))
}

func TestPercentOf(t *testing.T) {
	assert.InDelta(t, 60.0, percentOf(3, 5), 1e-9)
	assert.InDelta(t, 100.0, percentOf(7, 5), 1e-9)
	assert.Zero(t, percentOf(1, 0))
	assert.InDelta(t, 33.333333, percentOf(1, 3), 1e-6)
	assert.InDelta(t, 66.666667, percentOf(2, 3), 1e-6)
}
