package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"questlog/internal/model"
	"questlog/internal/repository"

	"github.com/google/uuid"
)

type QuestService struct {
	repo     QuestRepository
	ledger   *Ledger
	settings Settings
	notifier Notifier
	now      func() time.Time
	newID    func() uuid.UUID
}

func NewQuestService(repo QuestRepository, ledger *Ledger, settings Settings, notifier Notifier) *QuestService {
	return &QuestService{
		repo:     repo,
		ledger:   ledger,
		settings: settings,
		notifier: orNop(notifier),
		now:      time.Now,
		newID:    uuid.New,
	}
}

func (s *QuestService) ListQuests(ctx context.Context, userID int64) ([]*model.QuestDefinition, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrProfileNotFound)
	}

	quests, err := s.repo.ListQuests(ctx, profile.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	return quests, nil
}

func (s *QuestService) CreateQuest(ctx context.Context, quest *model.QuestDefinition) (*model.QuestDefinition, error) {
	quest.Title = strings.TrimSpace(quest.Title)
	quest.Path = strings.ToLower(strings.TrimSpace(quest.Path))

	switch {
	case quest.Title == "":
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	case quest.Path == "":
		return nil, fmt.Errorf("%w: path is required", ErrValidationFailed)
	case quest.XPReward <= 0:
		return nil, fmt.Errorf("%w: xp reward must be positive", ErrValidationFailed)
	}

	quest.QuestID = s.newID()
	quest.CreatedAt = s.now().UTC()

	if err := s.repo.CreateQuest(ctx, quest); err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}
	return quest, nil
}

// SelectQuest makes the quest active for the user. Selecting a quest that is
// already active refreshes selected_at and is not counted against the cap.
func (s *QuestService) SelectQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.QuestAssignment, error) {
	var assignment *model.QuestAssignment

	err := s.repo.InTx(ctx, func(tx Tx) error {
		profile, err := tx.LockProfile(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}

		quest, err := tx.GetQuest(ctx, questID)
		if err != nil {
			return mapNotFound(err, ErrNotFound)
		}
		if !quest.IsActive {
			return ErrNotFound
		}
		if quest.Path != profile.Path {
			return ErrPathMismatch
		}

		now := s.now().UTC()

		existing, err := tx.FindActiveAssignment(ctx, userID, questID)
		switch {
		case err == nil:
			if err := tx.TouchAssignment(ctx, existing.AssignmentID, now); err != nil {
				return fmt.Errorf("failed to refresh assignment: %w", err)
			}
			existing.SelectedAt = now
			assignment = existing
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("failed to look up assignment: %w", err)
		}

		active, err := tx.CountActiveAssignments(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count active assignments: %w", err)
		}
		if active >= s.settings.activeQuestCap() {
			return ErrCapacityExceeded
		}

		a := &model.QuestAssignment{
			AssignmentID: s.newID(),
			UserID:       userID,
			QuestID:      questID,
			Status:       model.AssignmentActive,
			SelectedAt:   now,
		}
		id, err := tx.InsertAssignment(ctx, a)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
		a.AssignmentID = id
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// CompleteQuest finishes an active assignment and awards its XP once.
// Completing an already completed assignment reports Awarded false.
func (s *QuestService) CompleteQuest(ctx context.Context, userID int64, assignmentID uuid.UUID, note string) (*model.QuestCompletion, error) {
	var result model.QuestCompletion

	err := s.repo.InTx(ctx, func(tx Tx) error {
		// Profile first, then assignment: the same lock order as SelectQuest.
		if _, err := tx.LockProfile(ctx, userID); err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}

		a, err := tx.LockAssignment(ctx, assignmentID)
		if err != nil {
			return mapNotFound(err, ErrNotFound)
		}
		if a.UserID != userID {
			return ErrOwnershipViolation
		}

		switch a.Status {
		case model.AssignmentCompleted:
			total, err := tx.CurrentTotalXP(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to read total xp: %w", err)
			}
			result = model.QuestCompletion{Awarded: false, AwardedXP: 0, TotalXP: total}
			return nil
		case model.AssignmentActive:
		default:
			return ErrNotFound
		}

		quest, err := tx.GetQuest(ctx, a.QuestID)
		if err != nil {
			return mapNotFound(err, ErrNotFound)
		}

		now := s.now().UTC()
		completionID, err := tx.InsertCompletion(ctx, &model.CompletionRecord{
			CompletionID: s.newID(),
			AssignmentID: a.AssignmentID,
			UserID:       userID,
			Note:         strings.TrimSpace(note),
			CompletedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}

		award, err := s.ledger.Award(ctx, tx, userID, model.SourceQuestCompletion, completionID, quest.XPReward)
		if err != nil {
			return err
		}

		if err := tx.MarkAssignmentCompleted(ctx, a.AssignmentID, now); err != nil {
			return fmt.Errorf("failed to complete assignment: %w", err)
		}

		result = model.QuestCompletion{Awarded: award.Granted, TotalXP: award.TotalAfter}
		if award.Granted {
			result.AwardedXP = quest.XPReward
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Awarded {
		s.notifier.Notify(ctx, userID, Message{
			Type: MessageXPAwarded,
			Payload: map[string]any{
				"source_type":   string(model.SourceQuestCompletion),
				"assignment_id": assignmentID.String(),
				"awarded_xp":    result.AwardedXP,
				"total_xp":      result.TotalXP,
			},
		})
	}

	return &result, nil
}

func (s *QuestService) ListAssignments(ctx context.Context, userID int64, status model.AssignmentStatus) ([]*model.QuestAssignment, error) {
	switch status {
	case "", model.AssignmentActive, model.AssignmentCompleted, model.AssignmentAbandoned:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}

	assignments, err := s.repo.ListAssignments(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}
