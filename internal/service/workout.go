package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"questlog/internal/model"

	"github.com/google/uuid"
)

const maxLogRange = 366 * 24 * time.Hour

// WorkoutPolicy prices a completed workout log.
type WorkoutPolicy struct {
	BaseXP      int
	WalkBonusXP int
	RunBonusXP  int
}

var DefaultWorkoutPolicy = WorkoutPolicy{
	BaseXP:      20,
	WalkBonusXP: 10,
	RunBonusXP:  20,
}

func (p WorkoutPolicy) Amount(payload model.WorkoutPayload) int {
	amount := p.BaseXP
	if payload.Flag("walked") {
		amount += p.WalkBonusXP
	}
	if payload.Flag("ran") {
		amount += p.RunBonusXP
	}
	return amount
}

type WorkoutService struct {
	repo     WorkoutRepository
	ledger   *Ledger
	settings Settings
	notifier Notifier
	now      func() time.Time
	newID    func() uuid.UUID
}

func NewWorkoutService(repo WorkoutRepository, ledger *Ledger, settings Settings, notifier Notifier) *WorkoutService {
	if settings.Workout == (WorkoutPolicy{}) {
		settings.Workout = DefaultWorkoutPolicy
	}
	return &WorkoutService{
		repo:     repo,
		ledger:   ledger,
		settings: settings,
		notifier: orNop(notifier),
		now:      time.Now,
		newID:    uuid.New,
	}
}

func (s *WorkoutService) today() time.Time {
	return civilDate(s.now().In(s.settings.location()))
}

// LogWorkout upserts the log for the given date, awards XP for a completed
// log at most once per date, and recomputes the streaks.
func (s *WorkoutService) LogWorkout(ctx context.Context, userID int64, date time.Time, completed bool, payload model.WorkoutPayload) (*model.WorkoutResult, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidationFailed)
	}

	today := s.today()
	day := civilDate(date)
	if day.After(today.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: date %s is in the future", ErrValidationFailed, day.Format(time.DateOnly))
	}
	if payload == nil {
		payload = model.WorkoutPayload{}
	}

	var (
		result          model.WorkoutResult
		previousCurrent int
	)

	err := s.repo.InTx(ctx, func(tx Tx) error {
		profile, err := tx.LockProfile(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}
		previousCurrent = profile.CurrentStreak

		logID, err := tx.UpsertWorkoutLog(ctx, &model.WorkoutLog{
			LogID:     s.newID(),
			UserID:    userID,
			Date:      day,
			Completed: completed,
			Payload:   payload,
			UpdatedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to write workout log: %w", err)
		}
		result.LogID = logID
		result.TotalXP = profile.TotalXP

		if completed {
			amount := s.settings.Workout.Amount(payload)
			award, err := s.ledger.Award(ctx, tx, userID, model.SourceWorkoutLog, logID, amount)
			if err != nil {
				return err
			}
			if award.Granted {
				result.AwardedXP = amount
			}
			result.TotalXP = award.TotalAfter
		}

		dates, err := tx.CompletedWorkoutDates(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load completed dates: %w", err)
		}

		streaks := ComputeStreaks(dates, today)
		result.CurrentStreak = streaks.Current
		result.LongestStreak = max(profile.LongestStreak, streaks.Longest)

		if err := tx.UpdateStreaks(ctx, userID, result.CurrentStreak, result.LongestStreak); err != nil {
			return fmt.Errorf("failed to update streaks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AwardedXP > 0 {
		s.notifier.Notify(ctx, userID, Message{
			Type: MessageXPAwarded,
			Payload: map[string]any{
				"source_type": string(model.SourceWorkoutLog),
				"log_id":      result.LogID.String(),
				"awarded_xp":  result.AwardedXP,
				"total_xp":    result.TotalXP,
			},
		})
	}
	if result.CurrentStreak != previousCurrent && isStreakMilestone(result.CurrentStreak) {
		s.notifier.Notify(ctx, userID, Message{
			Type: MessageStreakMilestone,
			Payload: map[string]any{
				"current_streak": result.CurrentStreak,
				"longest_streak": result.LongestStreak,
			},
		})
	}

	return &result, nil
}

func (s *WorkoutService) ListLogs(ctx context.Context, userID int64, from, to time.Time) ([]*model.WorkoutLog, error) {
	if to.IsZero() {
		to = s.today()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	from, to = civilDate(from), civilDate(to)

	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", ErrValidationFailed)
	}
	if to.Sub(from) > maxLogRange {
		return nil, fmt.Errorf("%w: range is longer than a year", ErrValidationFailed)
	}

	logs, err := s.repo.ListWorkoutLogs(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout logs: %w", err)
	}
	return logs, nil
}

func (s *WorkoutService) SelectWorkoutPlan(ctx context.Context, userID int64, planID uuid.UUID) (uuid.UUID, error) {
	err := s.repo.InTx(ctx, func(tx Tx) error {
		profile, err := tx.LockProfile(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}

		plan, err := tx.GetWorkoutPlan(ctx, planID)
		if err != nil {
			return mapNotFound(err, ErrNotFound)
		}
		if !plan.IsActive {
			return ErrNotFound
		}
		if plan.Path != profile.Path {
			return ErrPathMismatch
		}

		return tx.SetWorkoutPlan(ctx, userID, planID)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return planID, nil
}

func (s *WorkoutService) ListPlans(ctx context.Context, userID int64) ([]*model.WorkoutPlan, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrProfileNotFound)
	}

	plans, err := s.repo.ListWorkoutPlans(ctx, profile.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout plans: %w", err)
	}
	return plans, nil
}

func (s *WorkoutService) CreatePlan(ctx context.Context, plan *model.WorkoutPlan) (*model.WorkoutPlan, error) {
	plan.Title = strings.TrimSpace(plan.Title)
	plan.Path = strings.ToLower(strings.TrimSpace(plan.Path))
	if plan.Title == "" || plan.Path == "" {
		return nil, fmt.Errorf("%w: title and path are required", ErrValidationFailed)
	}

	plan.PlanID = s.newID()
	plan.CreatedAt = s.now().UTC()

	if err := s.repo.CreateWorkoutPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create workout plan: %w", err)
	}
	return plan, nil
}
