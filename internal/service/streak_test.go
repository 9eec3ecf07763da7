package service

import (
	"testing"
	"time"

	"questlog/internal/model"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, day(s))
	}
	return out
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name      string
		completed []time.Time
		today     time.Time
		expected  model.Streaks
	}{
		{
			name:     "No logs",
			today:    day("2024-03-10"),
			expected: model.Streaks{},
		},
		{
			name:      "Three consecutive days ending today",
			completed: days("2024-03-08", "2024-03-09", "2024-03-10"),
			today:     day("2024-03-10"),
			expected:  model.Streaks{Current: 3, Longest: 3},
		},
		{
			name:      "Run ending yesterday still counts",
			completed: days("2024-03-07", "2024-03-08", "2024-03-09"),
			today:     day("2024-03-10"),
			expected:  model.Streaks{Current: 3, Longest: 3},
		},
		{
			name:      "Run ending two days ago is broken",
			completed: days("2024-03-06", "2024-03-07", "2024-03-08"),
			today:     day("2024-03-10"),
			expected:  model.Streaks{Current: 0, Longest: 3},
		},
		{
			name: "Longer run in the past",
			completed: days(
				"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05",
				"2024-03-09", "2024-03-10",
			),
			today:    day("2024-03-10"),
			expected: model.Streaks{Current: 2, Longest: 5},
		},
		{
			name:      "Duplicates and order do not matter",
			completed: days("2024-03-10", "2024-03-09", "2024-03-10", "2024-03-09"),
			today:     day("2024-03-10"),
			expected:  model.Streaks{Current: 2, Longest: 2},
		},
		{
			name:      "Month boundary",
			completed: days("2024-02-28", "2024-02-29", "2024-03-01"),
			today:     day("2024-03-01"),
			expected:  model.Streaks{Current: 3, Longest: 3},
		},
		{
			name:      "Tomorrow's log does not extend the current streak",
			completed: days("2024-03-11"),
			today:     day("2024-03-10"),
			expected:  model.Streaks{Current: 0, Longest: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeStreaks(tt.completed, tt.today))
		})
	}
}

func TestCivilDay_IgnoresZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	a := time.Date(2024, time.March, 10, 23, 59, 0, 0, tokyo)
	b := time.Date(2024, time.March, 10, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, civilDay(a), civilDay(b))
	assert.Equal(t, civilDay(b)+1, civilDay(day("2024-03-11")))
}
