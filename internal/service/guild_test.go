package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"questlog/internal/model"
	"questlog/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestGuildService(store *MockStore, notifier Notifier, codes ...string) *GuildService {
	s := NewGuildService(store, Settings{}, notifier)
	s.now = func() time.Time { return fixedNow }
	if len(codes) > 0 {
		i := 0
		s.newCode = func() (string, error) {
			c := codes[i%len(codes)]
			i++
			return c, nil
		}
	}
	return s
}

func TestNewInviteCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := newInviteCode()
		assert.NoError(t, err)
		assert.Len(t, code, inviteCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(inviteCodeAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestGuildService_CreateGuild(t *testing.T) {
	tests := []struct {
		name          string
		guildName     string
		codes         []string
		mockSetup     func(tx *MockTx)
		expectedCode  string
		expectedError error
	}{
		{
			name:          "Name too short",
			guildName:     " ab ",
			mockSetup:     func(tx *MockTx) {},
			expectedError: ErrValidationFailed,
		},
		{
			name:      "Created with owner membership",
			guildName: "Morning crew",
			codes:     []string{"ABCD2345"},
			mockSetup: func(tx *MockTx) {
				tx.On("LockProfile", mock.Anything, int64(1)).Return(&model.Profile{UserID: 1}, nil)
				tx.On("InsertGroup", mock.Anything, mock.Anything).Return(true, nil).Once()
				tx.On("InsertMembership", mock.Anything, mock.MatchedBy(func(m *model.GroupMembership) bool {
					return m.UserID == 1 && m.Role == model.RoleOwner
				})).Return(true, nil)
			},
			expectedCode: "ABCD2345",
		},
		{
			name:      "Code collision is retried",
			guildName: "Morning crew",
			codes:     []string{"TAKEN222", "FRESH333"},
			mockSetup: func(tx *MockTx) {
				tx.On("LockProfile", mock.Anything, int64(1)).Return(&model.Profile{UserID: 1}, nil)
				tx.On("InsertGroup", mock.Anything, mock.MatchedBy(func(g *model.Group) bool {
					return g.InviteCode == "TAKEN222"
				})).Return(false, nil).Once()
				tx.On("InsertGroup", mock.Anything, mock.MatchedBy(func(g *model.Group) bool {
					return g.InviteCode == "FRESH333"
				})).Return(true, nil).Once()
				tx.On("InsertMembership", mock.Anything, mock.Anything).Return(true, nil)
			},
			expectedCode: "FRESH333",
		},
		{
			name:      "Every attempt collides",
			guildName: "Morning crew",
			codes:     []string{"TAKEN222"},
			mockSetup: func(tx *MockTx) {
				tx.On("LockProfile", mock.Anything, int64(1)).Return(&model.Profile{UserID: 1}, nil)
				tx.On("InsertGroup", mock.Anything, mock.Anything).Return(false, nil).Times(inviteCodeAttempts)
			},
			expectedError: errInviteCodeExhausted,
		},
		{
			name:      "Unregistered owner",
			guildName: "Morning crew",
			mockSetup: func(tx *MockTx) {
				tx.On("LockProfile", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrProfileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockStore()
			tt.mockSetup(store.Tx)
			svc := newTestGuildService(store, nil, tt.codes...)

			g, err := svc.CreateGuild(context.Background(), 1, tt.guildName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				store.Tx.AssertNotCalled(t, "InsertMembership", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCode, g.InviteCode)
			assert.Equal(t, []int64{1}, g.MemberIDs)
			store.Tx.AssertExpectations(t)
		})
	}
}

func TestGuildService_JoinGuildByCode(t *testing.T) {
	group := &model.Group{GroupID: uuid.New(), Name: "Morning crew", OwnerID: 1, InviteCode: "ABCD2345"}

	t.Run("New member notifies the owner", func(t *testing.T) {
		store := NewMockStore()
		notifier := &MockNotifier{}
		store.Tx.On("LockProfile", mock.Anything, int64(2)).Return(&model.Profile{UserID: 2}, nil)
		store.Tx.On("FindGroupByCode", mock.Anything, "abcd2345").Return(group, nil)
		store.Tx.On("InsertMembership", mock.Anything, mock.MatchedBy(func(m *model.GroupMembership) bool {
			return m.UserID == 2 && m.Role == model.RoleMember && m.GroupID == group.GroupID
		})).Return(true, nil)
		notifier.On("Notify", mock.Anything, int64(1), mock.MatchedBy(func(m Message) bool {
			return m.Type == MessageGuildJoined
		})).Return()

		g, err := newTestGuildService(store, notifier).JoinGuildByCode(context.Background(), 2, " abcd2345 ")

		assert.NoError(t, err)
		assert.Equal(t, group.GroupID, g.GroupID)
		notifier.AssertExpectations(t)
	})

	t.Run("Joining twice is a no-op", func(t *testing.T) {
		store := NewMockStore()
		notifier := &MockNotifier{}
		store.Tx.On("LockProfile", mock.Anything, int64(2)).Return(&model.Profile{UserID: 2}, nil)
		store.Tx.On("FindGroupByCode", mock.Anything, "ABCD2345").Return(group, nil)
		store.Tx.On("InsertMembership", mock.Anything, mock.Anything).Return(false, nil)

		g, err := newTestGuildService(store, notifier).JoinGuildByCode(context.Background(), 2, "ABCD2345")

		assert.NoError(t, err)
		assert.Equal(t, group.GroupID, g.GroupID)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown code", func(t *testing.T) {
		store := NewMockStore()
		store.Tx.On("LockProfile", mock.Anything, int64(2)).Return(&model.Profile{UserID: 2}, nil)
		store.Tx.On("FindGroupByCode", mock.Anything, "NOPE2222").Return(nil, repository.ErrNotFound)

		_, err := newTestGuildService(store, nil).JoinGuildByCode(context.Background(), 2, "NOPE2222")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Blank code", func(t *testing.T) {
		_, err := newTestGuildService(NewMockStore(), nil).JoinGuildByCode(context.Background(), 2, "   ")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGuildService_CreateChallenge(t *testing.T) {
	groupID := uuid.New()

	valid := func() *model.Challenge {
		return &model.Challenge{
			GroupID:  groupID,
			Title:    "Ten runs",
			StartsOn: day("2024-03-11"),
			EndsOn:   day("2024-03-24"),
		}
	}

	t.Run("Member creates a challenge", func(t *testing.T) {
		store := NewMockStore()
		store.On("GetGroup", mock.Anything, groupID).Return(&model.Group{GroupID: groupID}, nil)
		store.On("IsMember", mock.Anything, groupID, int64(1)).Return(true, nil)
		store.On("CreateChallenge", mock.Anything, mock.Anything).Return(nil)

		c, err := newTestGuildService(store, nil).CreateChallenge(context.Background(), 1, valid())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), c.CreatedBy)
		assert.NotEqual(t, uuid.Nil, c.ChallengeID)
	})

	t.Run("Outsider is refused", func(t *testing.T) {
		store := NewMockStore()
		store.On("GetGroup", mock.Anything, groupID).Return(&model.Group{GroupID: groupID}, nil)
		store.On("IsMember", mock.Anything, groupID, int64(5)).Return(false, nil)

		_, err := newTestGuildService(store, nil).CreateChallenge(context.Background(), 5, valid())

		assert.ErrorIs(t, err, ErrAuthorization)
		store.AssertNotCalled(t, "CreateChallenge", mock.Anything, mock.Anything)
	})

	t.Run("Ends before it starts", func(t *testing.T) {
		c := valid()
		c.EndsOn = day("2024-03-01")

		_, err := newTestGuildService(NewMockStore(), nil).CreateChallenge(context.Background(), 1, c)

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}
