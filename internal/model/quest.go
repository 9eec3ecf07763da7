package model

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	// AssignmentAbandoned is reserved; nothing transitions into it yet.
	AssignmentAbandoned AssignmentStatus = "abandoned"
)

type QuestDefinition struct {
	QuestID    uuid.UUID
	Path       string
	Category   string
	Difficulty string
	Title      string
	XPReward   int
	IsActive   bool
	CreatedAt  time.Time
}

type QuestAssignment struct {
	AssignmentID uuid.UUID
	UserID       int64
	QuestID      uuid.UUID
	Status       AssignmentStatus
	SelectedAt   time.Time
	CompletedAt  *time.Time
}

type CompletionRecord struct {
	CompletionID uuid.UUID
	AssignmentID uuid.UUID
	UserID       int64
	Note         string
	CompletedAt  time.Time
}

type QuestCompletion struct {
	Awarded   bool
	AwardedXP int
	TotalXP   int
}
