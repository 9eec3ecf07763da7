package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"questlog/internal/model"

	"github.com/google/uuid"
)

const (
	minGuildName     = 3
	maxGuildName     = 40
	maxChallengeName = 80

	inviteCodeLength   = 8
	inviteCodeAttempts = 5
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var errInviteCodeExhausted = errors.New("could not allocate a unique invite code")

type GuildService struct {
	repo     GuildRepository
	settings Settings
	notifier Notifier
	now      func() time.Time
	newID    func() uuid.UUID
	newCode  func() (string, error)
}

func NewGuildService(repo GuildRepository, settings Settings, notifier Notifier) *GuildService {
	return &GuildService{
		repo:     repo,
		settings: settings,
		notifier: orNop(notifier),
		now:      time.Now,
		newID:    uuid.New,
		newCode:  newInviteCode,
	}
}

func newInviteCode() (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// CreateGuild creates the group and the owner's membership together.
func (s *GuildService) CreateGuild(ctx context.Context, userID int64, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minGuildName || n > maxGuildName {
		return nil, fmt.Errorf("%w: name must be %d-%d characters", ErrValidationFailed, minGuildName, maxGuildName)
	}

	now := s.now().UTC()
	group := &model.Group{
		GroupID:   s.newID(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
	}

	err := s.repo.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockProfile(ctx, userID); err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}

		created := false
		for attempt := 0; attempt < inviteCodeAttempts && !created; attempt++ {
			code, err := s.newCode()
			if err != nil {
				return fmt.Errorf("failed to generate invite code: %w", err)
			}
			group.InviteCode = code

			created, err = tx.InsertGroup(ctx, group)
			if err != nil {
				return fmt.Errorf("failed to insert group: %w", err)
			}
		}
		if !created {
			return errInviteCodeExhausted
		}

		_, err := tx.InsertMembership(ctx, &model.GroupMembership{
			GroupID:  group.GroupID,
			UserID:   userID,
			Role:     model.RoleOwner,
			JoinedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	group.MemberIDs = []int64{userID}
	return group, nil
}

// JoinGuildByCode adds the caller as a member. Joining a group the caller
// already belongs to succeeds without writing.
func (s *GuildService) JoinGuildByCode(ctx context.Context, userID int64, code string) (*model.Group, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	var (
		group  *model.Group
		joined bool
	)

	err := s.repo.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockProfile(ctx, userID); err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}

		g, err := tx.FindGroupByCode(ctx, code)
		if err != nil {
			return mapNotFound(err, ErrNotFound)
		}
		group = g

		joined, err = tx.InsertMembership(ctx, &model.GroupMembership{
			GroupID:  g.GroupID,
			UserID:   userID,
			Role:     model.RoleMember,
			JoinedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joined && group.OwnerID != userID {
		s.notifier.Notify(ctx, group.OwnerID, Message{
			Type: MessageGuildJoined,
			Payload: map[string]any{
				"group_id":   group.GroupID.String(),
				"group_name": group.Name,
				"user_id":    userID,
			},
		})
	}

	return group, nil
}

func (s *GuildService) ListGuilds(ctx context.Context, userID int64) ([]*model.Group, error) {
	groups, err := s.repo.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return groups, nil
}

func (s *GuildService) CreateChallenge(ctx context.Context, userID int64, c *model.Challenge) (*model.Challenge, error) {
	c.Title = strings.TrimSpace(c.Title)
	switch {
	case c.Title == "" || utf8.RuneCountInString(c.Title) > maxChallengeName:
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrValidationFailed, maxChallengeName)
	case c.StartsOn.IsZero() || c.EndsOn.IsZero():
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidationFailed)
	}
	c.StartsOn, c.EndsOn = civilDate(c.StartsOn), civilDate(c.EndsOn)
	if c.EndsOn.Before(c.StartsOn) {
		return nil, fmt.Errorf("%w: challenge ends before it starts", ErrValidationFailed)
	}

	if err := s.requireMember(ctx, c.GroupID, userID); err != nil {
		return nil, err
	}

	c.ChallengeID = s.newID()
	c.CreatedBy = userID
	c.CreatedAt = s.now().UTC()

	if err := s.repo.CreateChallenge(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

func (s *GuildService) ListChallenges(ctx context.Context, userID int64, groupID uuid.UUID) ([]*model.Challenge, error) {
	if s.settings.AllowBrowse {
		if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
			return nil, mapNotFound(err, ErrNotFound)
		}
	} else if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	challenges, err := s.repo.ListChallenges(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

func (s *GuildService) requireMember(ctx context.Context, groupID uuid.UUID, userID int64) error {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return mapNotFound(err, ErrNotFound)
	}

	member, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return ErrAuthorization
	}
	return nil
}
