package model

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type Timeframe string

const (
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeAllTime Timeframe = "all_time"
)

type Group struct {
	GroupID    uuid.UUID
	Name       string
	OwnerID    int64
	InviteCode string
	CreatedAt  time.Time
	MemberIDs  []int64
}

type GroupMembership struct {
	GroupID  uuid.UUID
	UserID   int64
	Role     MemberRole
	JoinedAt time.Time
}

type Challenge struct {
	ChallengeID uuid.UUID
	GroupID     uuid.UUID
	Title       string
	StartsOn    time.Time
	EndsOn      time.Time
	CreatedBy   int64
	CreatedAt   time.Time
}

type LeaderboardEntry struct {
	UserID      int64
	DisplayName string
	XP          int
	Rank        int
}
