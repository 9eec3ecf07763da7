package model

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceQuestCompletion SourceType = "quest_completion"
	SourceWorkoutLog      SourceType = "workout_log"
)

type XPEvent struct {
	EventID    uuid.UUID
	UserID     int64
	SourceType SourceType
	SourceID   uuid.UUID
	Amount     int
	CreatedAt  time.Time
}

type Award struct {
	Granted    bool
	TotalAfter int
}

type Reconciliation struct {
	UserID   int64
	Previous int
	Rebuilt  int
}
