package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"questlog/internal/model"
	"questlog/internal/repository"
	"questlog/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxHistory = 200

// Ledger owns the xp_events table. It is the only writer of a profile's
// total_xp, and it writes it in the same transaction as the event row.
type Ledger struct {
	repo  LedgerRepository
	now   func() time.Time
	newID func() uuid.UUID
}

func NewLedger(repo LedgerRepository) *Ledger {
	return &Ledger{
		repo:  repo,
		now:   time.Now,
		newID: uuid.New,
	}
}

// Award appends one event keyed by (user, source, sourceID) and bumps the
// cached total. When the key is already recorded nothing is written and the
// current total is returned with Granted false.
func (l *Ledger) Award(ctx context.Context, tx Tx, userID int64, source model.SourceType, sourceID uuid.UUID, amount int) (model.Award, error) {
	if amount <= 0 {
		return model.Award{}, fmt.Errorf("%w: award amount must be positive", ErrValidationFailed)
	}

	inserted, err := tx.InsertXPEvent(ctx, &model.XPEvent{
		EventID:    l.newID(),
		UserID:     userID,
		SourceType: source,
		SourceID:   sourceID,
		Amount:     amount,
		CreatedAt:  l.now().UTC(),
	})
	if err != nil {
		return model.Award{}, fmt.Errorf("failed to insert xp event: %w", mapNotFound(err, ErrProfileNotFound))
	}

	if !inserted {
		total, err := tx.CurrentTotalXP(ctx, userID)
		if err != nil {
			return model.Award{}, fmt.Errorf("failed to read total xp: %w", mapNotFound(err, ErrProfileNotFound))
		}
		return model.Award{Granted: false, TotalAfter: total}, nil
	}

	total, err := tx.IncrementTotalXP(ctx, userID, amount)
	if err != nil {
		return model.Award{}, fmt.Errorf("failed to increment total xp: %w", mapNotFound(err, ErrProfileNotFound))
	}

	logger.Logger().Debug("xp awarded",
		zap.Int64("user_id", userID),
		zap.String("source_type", string(source)),
		zap.Stringer("source_id", sourceID),
		zap.Int("amount", amount),
		zap.Int("total_xp", total))

	return model.Award{Granted: true, TotalAfter: total}, nil
}

func (l *Ledger) AwardXP(ctx context.Context, userID int64, source model.SourceType, sourceID uuid.UUID, amount int) (model.Award, error) {
	var award model.Award
	err := l.repo.InTx(ctx, func(tx Tx) error {
		var err error
		award, err = l.Award(ctx, tx, userID, source, sourceID, amount)
		return err
	})
	if err != nil {
		return model.Award{}, err
	}
	return award, nil
}

// Reconcile rebuilds the cached total from the ledger rows.
func (l *Ledger) Reconcile(ctx context.Context, userID int64) (*model.Reconciliation, error) {
	out := &model.Reconciliation{UserID: userID}

	err := l.repo.InTx(ctx, func(tx Tx) error {
		profile, err := tx.LockProfile(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrProfileNotFound)
		}
		out.Previous = profile.TotalXP

		sum, err := tx.SumXPEvents(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to sum xp events: %w", err)
		}
		out.Rebuilt = sum

		if sum == profile.TotalXP {
			return nil
		}
		return tx.SetTotalXP(ctx, userID, sum)
	})
	if err != nil {
		return nil, err
	}

	if out.Previous != out.Rebuilt {
		logger.Logger().Warn("total xp drifted from ledger",
			zap.Int64("user_id", userID),
			zap.Int("cached", out.Previous),
			zap.Int("ledger", out.Rebuilt))
	}

	return out, nil
}

func (l *Ledger) History(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	events, err := l.repo.ListXPEvents(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get xp history: %w", err)
	}
	return events, nil
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
