package api

import (
	"time"

	"questlog/internal/model"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ProfileResponse struct {
	UserID        int64      `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	Path          string     `json:"path"`
	WorkoutPlanID *uuid.UUID `json:"workout_plan_id"`
	TotalXP       int        `json:"total_xp"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Path:          p.Path,
		WorkoutPlanID: p.WorkoutPlanID,
		TotalXP:       p.TotalXP,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		CreatedAt:     p.CreatedAt,
	}
}

type XPEventResponse struct {
	EventID    uuid.UUID `json:"event_id"`
	SourceType string    `json:"source_type"`
	SourceID   uuid.UUID `json:"source_id"`
	Amount     int       `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type QuestResponse struct {
	QuestID    uuid.UUID `json:"quest_id"`
	Path       string    `json:"path"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Title      string    `json:"title"`
	XPReward   int       `json:"xp_reward"`
	IsActive   bool      `json:"is_active"`
}

func newQuestResponse(q *model.QuestDefinition) QuestResponse {
	return QuestResponse{
		QuestID:    q.QuestID,
		Path:       q.Path,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Title:      q.Title,
		XPReward:   q.XPReward,
		IsActive:   q.IsActive,
	}
}

type AssignmentResponse struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	QuestID      uuid.UUID  `json:"quest_id"`
	Status       string     `json:"status"`
	SelectedAt   time.Time  `json:"selected_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func newAssignmentResponse(a *model.QuestAssignment) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID: a.AssignmentID,
		QuestID:      a.QuestID,
		Status:       string(a.Status),
		SelectedAt:   a.SelectedAt,
		CompletedAt:  a.CompletedAt,
	}
}

type CompletionResponse struct {
	Awarded   bool `json:"awarded"`
	AwardedXP int  `json:"awarded_xp"`
	TotalXP   int  `json:"total_xp"`
}

type WorkoutPlanResponse struct {
	PlanID   uuid.UUID `json:"plan_id"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	IsActive bool      `json:"is_active"`
}

func newWorkoutPlanResponse(p *model.WorkoutPlan) WorkoutPlanResponse {
	return WorkoutPlanResponse{
		PlanID:   p.PlanID,
		Path:     p.Path,
		Title:    p.Title,
		IsActive: p.IsActive,
	}
}

type WorkoutLogResponse struct {
	LogID     uuid.UUID            `json:"log_id"`
	Date      string               `json:"date"`
	Completed bool                 `json:"completed"`
	Payload   model.WorkoutPayload `json:"payload"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type WorkoutResultResponse struct {
	LogID         uuid.UUID `json:"log_id"`
	AwardedXP     int       `json:"awarded_xp"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	TotalXP       int       `json:"total_xp"`
}

type GuildResponse struct {
	GroupID    uuid.UUID `json:"group_id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	InviteCode string    `json:"invite_code"`
	MemberIDs  []int64   `json:"member_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

func newGuildResponse(g *model.Group) GuildResponse {
	members := g.MemberIDs
	if members == nil {
		members = []int64{}
	}
	return GuildResponse{
		GroupID:    g.GroupID,
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		InviteCode: g.InviteCode,
		MemberIDs:  members,
		CreatedAt:  g.CreatedAt,
	}
}

type LeaderboardEntryResponse struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	XP          int    `json:"xp"`
}

type ChallengeResponse struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	GroupID     uuid.UUID `json:"group_id"`
	Title       string    `json:"title"`
	StartsOn    string    `json:"starts_on"`
	EndsOn      string    `json:"ends_on"`
	CreatedBy   int64     `json:"created_by"`
}

func newChallengeResponse(c *model.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ChallengeID: c.ChallengeID,
		GroupID:     c.GroupID,
		Title:       c.Title,
		StartsOn:    c.StartsOn.Format(dateLayout),
		EndsOn:      c.EndsOn.Format(dateLayout),
		CreatedBy:   c.CreatedBy,
	}
}
