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
	"github.com/jmoiron/sqlx"
)

type Profile struct {
	UserID        int64         `db:"user_id"`
	DisplayName   string        `db:"display_name"`
	Path          string        `db:"path"`
	WorkoutPlanID uuid.NullUUID `db:"workout_plan_id"`
	TotalXP       int           `db:"total_xp"`
	CurrentStreak int           `db:"current_streak"`
	LongestStreak int           `db:"longest_streak"`
	IsAdmin       bool          `db:"is_admin"`
	CreatedAt     time.Time     `db:"created_at"`
}

var profileColumns = []string{
	"user_id",
	"display_name",
	"path",
	"workout_plan_id",
	"total_xp",
	"current_streak",
	"longest_streak",
	"is_admin",
	"created_at",
}

func (p *Profile) toModel() *model.Profile {
	out := &model.Profile{
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Path:          p.Path,
		TotalXP:       p.TotalXP,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		IsAdmin:       p.IsAdmin,
		CreatedAt:     p.CreatedAt,
	}
	if p.WorkoutPlanID.Valid {
		id := p.WorkoutPlanID.UUID
		out.WorkoutPlanID = &id
	}
	return out
}

func (r *Repository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	query, args, err := squirrel.
		Insert("profiles").
		SetMap(map[string]interface{}{
			"user_id":      profile.UserID,
			"display_name": profile.DisplayName,
			"path":         profile.Path,
			"created_at":   profile.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return translate(err)
	}

	return nil
}

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	return getProfile(ctx, r.db, userID, false)
}

func getProfile(ctx context.Context, q sqlx.QueryerContext, userID int64, forUpdate bool) (*model.Profile, error) {
	builder := squirrel.
		Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var p Profile
	if err = sqlx.GetContext(ctx, q, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p.toModel(), nil
}

// LockProfile reads the profile and holds its row lock until the
// transaction ends, serializing concurrent writers for the same user.
func (t *Tx) LockProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	return getProfile(ctx, t.tx, userID, true)
}

func (t *Tx) SetWorkoutPlan(ctx context.Context, userID int64, planID uuid.UUID) error {
	query, args, err := squirrel.
		Update("profiles").
		Set("workout_plan_id", planID).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return execOne(ctx, t.tx, query, args...)
}

func (t *Tx) UpdateStreaks(ctx context.Context, userID int64, current, longest int) error {
	query, args, err := squirrel.
		Update("profiles").
		SetMap(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
		}).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return execOne(ctx, t.tx, query, args...)
}

func execOne(ctx context.Context, e sqlx.ExecerContext, query string, args ...interface{}) error {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
