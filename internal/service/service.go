package service

import (
	"context"
	"errors"
	"time"

	"questlog/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrValidationFailed   = errors.New("validation failed")
	ErrCapacityExceeded   = errors.New("active quest limit reached")
	ErrOwnershipViolation = errors.New("caller does not own this record")
	ErrPathMismatch       = errors.New("belongs to a different path")
	ErrNotFound           = errors.New("not found")
	ErrAuthorization      = errors.New("group membership required")
	ErrProfileNotFound    = errors.New("profile not registered")
)

type Service struct {
	*ProfileService
	*Ledger
	*QuestService
	*WorkoutService
	*LeaderboardService
	*GuildService
}

func New(store *Store, settings Settings, notifier Notifier) *Service {
	ledger := NewLedger(store)
	return &Service{
		ProfileService:     NewProfileService(store, settings),
		Ledger:             ledger,
		QuestService:       NewQuestService(store, ledger, settings, notifier),
		WorkoutService:     NewWorkoutService(store, ledger, settings, notifier),
		LeaderboardService: NewLeaderboardService(store, settings),
		GuildService:       NewGuildService(store, settings, notifier),
	}
}

type Settings struct {
	ActiveQuestCap int
	Paths          []string
	Location       *time.Location
	Workout        WorkoutPolicy
	AllowBrowse    bool
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Settings) activeQuestCap() int {
	if s.ActiveQuestCap <= 0 {
		return 3
	}
	return s.ActiveQuestCap
}

// Tx is the set of writes available inside one store transaction.
type Tx interface {
	LockProfile(ctx context.Context, userID int64) (*model.Profile, error)
	SetWorkoutPlan(ctx context.Context, userID int64, planID uuid.UUID) error
	UpdateStreaks(ctx context.Context, userID int64, current, longest int) error

	InsertXPEvent(ctx context.Context, event *model.XPEvent) (bool, error)
	IncrementTotalXP(ctx context.Context, userID int64, amount int) (int, error)
	CurrentTotalXP(ctx context.Context, userID int64) (int, error)
	SumXPEvents(ctx context.Context, userID int64) (int, error)
	SetTotalXP(ctx context.Context, userID int64, total int) error

	GetQuest(ctx context.Context, questID uuid.UUID) (*model.QuestDefinition, error)
	FindActiveAssignment(ctx context.Context, userID int64, questID uuid.UUID) (*model.QuestAssignment, error)
	LockAssignment(ctx context.Context, assignmentID uuid.UUID) (*model.QuestAssignment, error)
	TouchAssignment(ctx context.Context, assignmentID uuid.UUID, at time.Time) error
	CountActiveAssignments(ctx context.Context, userID int64) (int, error)
	InsertAssignment(ctx context.Context, a *model.QuestAssignment) (uuid.UUID, error)
	MarkAssignmentCompleted(ctx context.Context, assignmentID uuid.UUID, at time.Time) error
	InsertCompletion(ctx context.Context, c *model.CompletionRecord) (uuid.UUID, error)

	GetWorkoutPlan(ctx context.Context, planID uuid.UUID) (*model.WorkoutPlan, error)
	UpsertWorkoutLog(ctx context.Context, log *model.WorkoutLog) (uuid.UUID, error)
	CompletedWorkoutDates(ctx context.Context, userID int64) ([]time.Time, error)

	InsertGroup(ctx context.Context, g *model.Group) (bool, error)
	InsertMembership(ctx context.Context, m *model.GroupMembership) (bool, error)
	FindGroupByCode(ctx context.Context, code string) (*model.Group, error)
}

type Transactor interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

type LedgerRepository interface {
	Transactor
	ListXPEvents(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error)
}

type QuestRepository interface {
	Transactor
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	ListQuests(ctx context.Context, path string) ([]*model.QuestDefinition, error)
	CreateQuest(ctx context.Context, quest *model.QuestDefinition) error
	ListAssignments(ctx context.Context, userID int64, status model.AssignmentStatus) ([]*model.QuestAssignment, error)
}

type WorkoutRepository interface {
	Transactor
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	ListWorkoutLogs(ctx context.Context, userID int64, from, to time.Time) ([]*model.WorkoutLog, error)
	ListWorkoutPlans(ctx context.Context, path string) ([]*model.WorkoutPlan, error)
	CreateWorkoutPlan(ctx context.Context, plan *model.WorkoutPlan) error
}

type LeaderboardRepository interface {
	GetGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error)
	IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error)
	GroupStandings(ctx context.Context, groupID uuid.UUID, since *time.Time) ([]*model.LeaderboardEntry, error)
}

type GuildRepository interface {
	Transactor
	GetGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error)
	IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error)
	CreateChallenge(ctx context.Context, c *model.Challenge) error
	ListChallenges(ctx context.Context, groupID uuid.UUID) ([]*model.Challenge, error)
}

type ProfileServiceI interface {
	RegisterProfile(ctx context.Context, userID int64, displayName, path string) (*model.Profile, error)
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

type LedgerI interface {
	AwardXP(ctx context.Context, userID int64, source model.SourceType, sourceID uuid.UUID, amount int) (model.Award, error)
	Reconcile(ctx context.Context, userID int64) (*model.Reconciliation, error)
	History(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error)
}

type QuestServiceI interface {
	ListQuests(ctx context.Context, userID int64) ([]*model.QuestDefinition, error)
	CreateQuest(ctx context.Context, quest *model.QuestDefinition) (*model.QuestDefinition, error)
	SelectQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.QuestAssignment, error)
	CompleteQuest(ctx context.Context, userID int64, assignmentID uuid.UUID, note string) (*model.QuestCompletion, error)
	ListAssignments(ctx context.Context, userID int64, status model.AssignmentStatus) ([]*model.QuestAssignment, error)
}

type WorkoutServiceI interface {
	LogWorkout(ctx context.Context, userID int64, date time.Time, completed bool, payload model.WorkoutPayload) (*model.WorkoutResult, error)
	ListLogs(ctx context.Context, userID int64, from, to time.Time) ([]*model.WorkoutLog, error)
	SelectWorkoutPlan(ctx context.Context, userID int64, planID uuid.UUID) (uuid.UUID, error)
	ListPlans(ctx context.Context, userID int64) ([]*model.WorkoutPlan, error)
	CreatePlan(ctx context.Context, plan *model.WorkoutPlan) (*model.WorkoutPlan, error)
}

type LeaderboardServiceI interface {
	GetLeaderboard(ctx context.Context, callerID int64, groupID uuid.UUID, timeframe model.Timeframe) ([]*model.LeaderboardEntry, error)
}

type GuildServiceI interface {
	CreateGuild(ctx context.Context, userID int64, name string) (*model.Group, error)
	JoinGuildByCode(ctx context.Context, userID int64, code string) (*model.Group, error)
	ListGuilds(ctx context.Context, userID int64) ([]*model.Group, error)
	CreateChallenge(ctx context.Context, userID int64, c *model.Challenge) (*model.Challenge, error)
	ListChallenges(ctx context.Context, userID int64, groupID uuid.UUID) ([]*model.Challenge, error)
}
