package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"questlog/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type WorkoutPlan struct {
	PlanID    uuid.UUID `db:"plan_id"`
	Path      string    `db:"path"`
	Title     string    `db:"title"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

type WorkoutLog struct {
	LogID     uuid.UUID `db:"log_id"`
	UserID    int64     `db:"user_id"`
	LogDate   time.Time `db:"log_date"`
	Completed bool      `db:"completed"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var planColumns = []string{"plan_id", "path", "title", "is_active", "created_at"}

func (p *WorkoutPlan) toModel() *model.WorkoutPlan {
	return &model.WorkoutPlan{
		PlanID:    p.PlanID,
		Path:      p.Path,
		Title:     p.Title,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

func (r *Repository) CreateWorkoutPlan(ctx context.Context, plan *model.WorkoutPlan) error {
	query, args, err := squirrel.
		Insert("workout_plans").
		SetMap(map[string]interface{}{
			"plan_id":    plan.PlanID,
			"path":       plan.Path,
			"title":      plan.Title,
			"is_active":  plan.IsActive,
			"created_at": plan.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build plan insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert workout plan: %w", translate(err))
	}

	return nil
}

func (r *Repository) ListWorkoutPlans(ctx context.Context, path string) ([]*model.WorkoutPlan, error) {
	query, args, err := squirrel.
		Select(planColumns...).
		From("workout_plans").
		Where(squirrel.Eq{"path": path, "is_active": true}).
		OrderBy("title").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []WorkoutPlan
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list workout plans: %w", err)
	}

	plans := make([]*model.WorkoutPlan, len(rows))
	for i := range rows {
		plans[i] = rows[i].toModel()
	}

	return plans, nil
}

func (r *Repository) ListWorkoutLogs(ctx context.Context, userID int64, from, to time.Time) ([]*model.WorkoutLog, error) {
	query, args, err := squirrel.
		Select("log_id", "user_id", "log_date", "completed", "payload", "created_at", "updated_at").
		From("workout_logs").
		Where(squirrel.And{
			squirrel.Eq{"user_id": userID},
			squirrel.GtOrEq{"log_date": from.Format(dateLayout)},
			squirrel.LtOrEq{"log_date": to.Format(dateLayout)},
		}).
		OrderBy("log_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []WorkoutLog
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list workout logs: %w", err)
	}

	logs := make([]*model.WorkoutLog, len(rows))
	for i, row := range rows {
		payload := model.WorkoutPayload{}
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload of log %s: %w", row.LogID, err)
			}
		}
		logs[i] = &model.WorkoutLog{
			LogID:     row.LogID,
			UserID:    row.UserID,
			Date:      row.LogDate,
			Completed: row.Completed,
			Payload:   payload,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
	}

	return logs, nil
}

func (t *Tx) GetWorkoutPlan(ctx context.Context, planID uuid.UUID) (*model.WorkoutPlan, error) {
	query, args, err := squirrel.
		Select(planColumns...).
		From("workout_plans").
		Where(squirrel.Eq{"plan_id": planID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p WorkoutPlan
	if err = t.tx.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p.toModel(), nil
}

// UpsertWorkoutLog writes the log for (user, date). A second write for the
// same date overwrites completed and payload but keeps the original log_id.
func (t *Tx) UpsertWorkoutLog(ctx context.Context, log *model.WorkoutLog) (uuid.UUID, error) {
	payload := log.Payload
	if payload == nil {
		payload = model.WorkoutPayload{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	query, args, err := squirrel.
		Insert("workout_logs").
		Columns("log_id", "user_id", "log_date", "completed", "payload", "created_at", "updated_at").
		Values(log.LogID, log.UserID, log.Date.Format(dateLayout), log.Completed, string(encoded), log.UpdatedAt, log.UpdatedAt).
		Suffix("ON CONFLICT (user_id, log_date) DO UPDATE SET " +
			"completed = EXCLUDED.completed, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at " +
			"RETURNING log_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build workout log upsert query: %w", err)
	}

	var id uuid.UUID
	if err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, translate(err)
	}

	return id, nil
}

func (t *Tx) CompletedWorkoutDates(ctx context.Context, userID int64) ([]time.Time, error) {
	query, args, err := squirrel.
		Select("log_date").
		From("workout_logs").
		Where(squirrel.Eq{"user_id": userID, "completed": true}).
		OrderBy("log_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	if err = t.tx.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, err
	}

	return dates, nil
}
