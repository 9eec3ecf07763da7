package service

import (
	"context"
	"time"

	"questlog/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
	Tx *MockTx
}

func NewMockStore() *MockStore {
	return &MockStore{Tx: &MockTx{}}
}

// InTx runs fn against the store's MockTx. A non-nil error from fn is what
// the real store would return after rolling back.
func (m *MockStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return fn(m.Tx)
}

func (m *MockStore) CreateProfile(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStore) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockStore) ListXPEvents(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.XPEvent), args.Error(1)
}

func (m *MockStore) ListQuests(ctx context.Context, path string) ([]*model.QuestDefinition, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestDefinition), args.Error(1)
}

func (m *MockStore) CreateQuest(ctx context.Context, quest *model.QuestDefinition) error {
	args := m.Called(ctx, quest)
	return args.Error(0)
}

func (m *MockStore) ListAssignments(ctx context.Context, userID int64, status model.AssignmentStatus) ([]*model.QuestAssignment, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestAssignment), args.Error(1)
}

func (m *MockStore) ListWorkoutLogs(ctx context.Context, userID int64, from, to time.Time) ([]*model.WorkoutLog, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WorkoutLog), args.Error(1)
}

func (m *MockStore) ListWorkoutPlans(ctx context.Context, path string) ([]*model.WorkoutPlan, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WorkoutPlan), args.Error(1)
}

func (m *MockStore) CreateWorkoutPlan(ctx context.Context, plan *model.WorkoutPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockStore) GetGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockStore) IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GroupStandings(ctx context.Context, groupID uuid.UUID, since *time.Time) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, groupID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockStore) ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Group), args.Error(1)
}

func (m *MockStore) CreateChallenge(ctx context.Context, c *model.Challenge) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStore) ListChallenges(ctx context.Context, groupID uuid.UUID) ([]*model.Challenge, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Challenge), args.Error(1)
}

type MockTx struct {
	mock.Mock
}

func (m *MockTx) LockProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockTx) SetWorkoutPlan(ctx context.Context, userID int64, planID uuid.UUID) error {
	args := m.Called(ctx, userID, planID)
	return args.Error(0)
}

func (m *MockTx) UpdateStreaks(ctx context.Context, userID int64, current, longest int) error {
	args := m.Called(ctx, userID, current, longest)
	return args.Error(0)
}

func (m *MockTx) InsertXPEvent(ctx context.Context, event *model.XPEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockTx) IncrementTotalXP(ctx context.Context, userID int64, amount int) (int, error) {
	args := m.Called(ctx, userID, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockTx) CurrentTotalXP(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTx) SumXPEvents(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTx) SetTotalXP(ctx context.Context, userID int64, total int) error {
	args := m.Called(ctx, userID, total)
	return args.Error(0)
}

func (m *MockTx) GetQuest(ctx context.Context, questID uuid.UUID) (*model.QuestDefinition, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestDefinition), args.Error(1)
}

func (m *MockTx) FindActiveAssignment(ctx context.Context, userID int64, questID uuid.UUID) (*model.QuestAssignment, error) {
	args := m.Called(ctx, userID, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestAssignment), args.Error(1)
}

func (m *MockTx) LockAssignment(ctx context.Context, assignmentID uuid.UUID) (*model.QuestAssignment, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestAssignment), args.Error(1)
}

func (m *MockTx) TouchAssignment(ctx context.Context, assignmentID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, assignmentID, at)
	return args.Error(0)
}

func (m *MockTx) CountActiveAssignments(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTx) InsertAssignment(ctx context.Context, a *model.QuestAssignment) (uuid.UUID, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTx) MarkAssignmentCompleted(ctx context.Context, assignmentID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, assignmentID, at)
	return args.Error(0)
}

func (m *MockTx) InsertCompletion(ctx context.Context, c *model.CompletionRecord) (uuid.UUID, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTx) GetWorkoutPlan(ctx context.Context, planID uuid.UUID) (*model.WorkoutPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkoutPlan), args.Error(1)
}

func (m *MockTx) UpsertWorkoutLog(ctx context.Context, log *model.WorkoutLog) (uuid.UUID, error) {
	args := m.Called(ctx, log)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTx) CompletedWorkoutDates(ctx context.Context, userID int64) ([]time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockTx) InsertGroup(ctx context.Context, g *model.Group) (bool, error) {
	args := m.Called(ctx, g)
	return args.Bool(0), args.Error(1)
}

func (m *MockTx) InsertMembership(ctx context.Context, mem *model.GroupMembership) (bool, error) {
	args := m.Called(ctx, mem)
	return args.Bool(0), args.Error(1)
}

func (m *MockTx) FindGroupByCode(ctx context.Context, code string) (*model.Group, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int64, msg Message) {
	m.Called(ctx, userID, msg)
}
