package model

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID        int64
	DisplayName   string
	Path          string
	WorkoutPlanID *uuid.UUID
	TotalXP       int
	CurrentStreak int
	LongestStreak int
	IsAdmin       bool
	CreatedAt     time.Time
}
