package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"questlog/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type XPEvent struct {
	EventID    uuid.UUID `db:"event_id"`
	UserID     int64     `db:"user_id"`
	SourceType string    `db:"source_type"`
	SourceID   uuid.UUID `db:"source_id"`
	Amount     int       `db:"amount"`
	CreatedAt  time.Time `db:"created_at"`
}

// InsertXPEvent appends a ledger row unless one already exists for the same
// (user, source_type, source_id). The unique index decides; a concurrent
// duplicate waits on it and then reports false.
func (t *Tx) InsertXPEvent(ctx context.Context, event *model.XPEvent) (bool, error) {
	query, args, err := squirrel.
		Insert("xp_events").
		Columns("event_id", "user_id", "source_type", "source_id", "amount", "created_at").
		Values(event.EventID, event.UserID, string(event.SourceType), event.SourceID, event.Amount, event.CreatedAt).
		Suffix("ON CONFLICT (user_id, source_type, source_id) DO NOTHING RETURNING event_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build xp event insert query: %w", err)
	}

	var id uuid.UUID
	err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, translate(err)
	}

	return true, nil
}

func (t *Tx) IncrementTotalXP(ctx context.Context, userID int64, amount int) (int, error) {
	query, args, err := squirrel.
		Update("profiles").
		Set("total_xp", squirrel.Expr("total_xp + ?", amount)).
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING total_xp").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var total int
	if err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return total, nil
}

func (t *Tx) CurrentTotalXP(ctx context.Context, userID int64) (int, error) {
	query, args, err := squirrel.
		Select("total_xp").
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var total int
	if err = t.tx.GetContext(ctx, &total, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return total, nil
}

func (t *Tx) SumXPEvents(ctx context.Context, userID int64) (int, error) {
	query, args, err := squirrel.
		Select("COALESCE(SUM(amount), 0)").
		From("xp_events").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var sum int
	if err = t.tx.GetContext(ctx, &sum, query, args...); err != nil {
		return 0, err
	}

	return sum, nil
}

func (t *Tx) SetTotalXP(ctx context.Context, userID int64, total int) error {
	query, args, err := squirrel.
		Update("profiles").
		Set("total_xp", total).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return execOne(ctx, t.tx, query, args...)
}

func (r *Repository) ListXPEvents(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error) {
	query, args, err := squirrel.
		Select("event_id", "user_id", "source_type", "source_id", "amount", "created_at").
		From("xp_events").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []XPEvent
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list xp events: %w", err)
	}

	events := make([]*model.XPEvent, len(rows))
	for i, e := range rows {
		events[i] = &model.XPEvent{
			EventID:    e.EventID,
			UserID:     e.UserID,
			SourceType: model.SourceType(e.SourceType),
			SourceID:   e.SourceID,
			Amount:     e.Amount,
			CreatedAt:  e.CreatedAt,
		}
	}

	return events, nil
}
