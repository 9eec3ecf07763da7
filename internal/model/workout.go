package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkoutPlan struct {
	PlanID    uuid.UUID
	Path      string
	Title     string
	IsActive  bool
	CreatedAt time.Time
}

// WorkoutPayload is the free-form part of a log. Walked and Ran drive the
// bonus policy, everything else is stored as-is.
type WorkoutPayload map[string]any

func (p WorkoutPayload) Flag(key string) bool {
	v, ok := p[key].(bool)
	return ok && v
}

type WorkoutLog struct {
	LogID     uuid.UUID
	UserID    int64
	Date      time.Time
	Completed bool
	Payload   WorkoutPayload
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Streaks struct {
	Current int
	Longest int
}

type WorkoutResult struct {
	LogID         uuid.UUID
	AwardedXP     int
	CurrentStreak int
	LongestStreak int
	TotalXP       int
}
