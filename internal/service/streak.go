package service

import (
	"sort"
	"time"

	"questlog/internal/model"
)

// civilDay numbers calendar days so consecutive dates differ by one,
// independent of the zone the time value carries.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// civilDate drops the clock part and pins the date to UTC midnight.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStreaks derives streaks from the dates that have a completed log.
//
// Current counts back from today while every day has a log. If today has no
// log yet the count starts at yesterday, so an unbroken run is not reported
// as zero before the user logs for the day.
//
// Longest groups the sorted distinct days by day-minus-rank; every run of
// consecutive days shares one key and the largest group wins.
func ComputeStreaks(completed []time.Time, today time.Time) model.Streaks {
	if len(completed) == 0 {
		return model.Streaks{}
	}

	seen := make(map[int64]struct{}, len(completed))
	days := make([]int64, 0, len(completed))
	for _, t := range completed {
		d := civilDay(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	runs := make(map[int64]int, len(days))
	longest := 0
	for rank, d := range days {
		key := d - int64(rank)
		runs[key]++
		if runs[key] > longest {
			longest = runs[key]
		}
	}

	cursor := civilDay(today)
	if _, ok := seen[cursor]; !ok {
		cursor--
	}
	current := 0
	for {
		if _, ok := seen[cursor]; !ok {
			break
		}
		current++
		cursor--
	}

	return model.Streaks{Current: current, Longest: longest}
}
