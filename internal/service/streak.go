package service

import (
	"math"
	"sort"
	"time"
)

// Reward thresholds. Lower thresholds are re-attempted on every evaluation;
// the catalog decides which of them actually grant something.
var (
	MilestoneThresholds = []int{5, 10, 20, 50, 100}
	StreakThresholds    = []int{3, 5, 10, 15, 20, 30}
	PillarThresholds    = []int{3, 10}
)

// DayKey formats the calendar day t falls on in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// completionDays buckets timestamps into distinct calendar days in loc,
// ascending. Days are represented as UTC midnights so consecutive days are
// always exactly 24h apart regardless of DST in loc.
func completionDays(times []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		y, m, d := t.In(loc).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// CurrentStreak counts consecutive completion days walking backward from the
// most recent completion day, stopping at the first missing day. It does not
// matter how long ago that most recent day was.
func CurrentStreak(times []time.Time, loc *time.Location) int {
	days := completionDays(times, loc)
	if len(days) == 0 {
		return 0
	}
	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive completion days anywhere in the history
func LongestStreak(times []time.Time, loc *time.Location) int {
	days := completionDays(times, loc)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// WeekStart returns the most recent Sunday 00:00 in loc at or before now
func WeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, loc)
}

// CountSince counts timestamps at or after start
func CountSince(times []time.Time, start time.Time) int {
	n := 0
	for _, t := range times {
		if !t.Before(start) {
			n++
		}
	}
	return n
}

// ThemeWeekNumber is the Monday-based week of the year (00-53, as strftime
// %W) plus one, the numbering theme weeks are stored under.
func ThemeWeekNumber(now time.Time, loc *time.Location) int {
	local := now.In(loc)
	yday := local.YearDay() - 1
	mondayBased := (int(local.Weekday()) + 6) % 7
	return (yday+7-mondayBased)/7 + 1
}

// NextThreshold returns the first threshold above current, or the last one
// when all are reached.
func NextThreshold(thresholds []int, current int) int {
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	return thresholds[len(thresholds)-1]
}

// percentOf returns current as a percentage of target, capped at 100 once
// the target is reached
func percentOf(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(float64(current)*100/float64(target), 100)
}
