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

type QuestDefinition struct {
	QuestID    uuid.UUID `db:"quest_id"`
	Path       string    `db:"path"`
	Category   string    `db:"category"`
	Difficulty string    `db:"difficulty"`
	Title      string    `db:"title"`
	XPReward   int       `db:"xp_reward"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
}

type QuestAssignment struct {
	AssignmentID uuid.UUID  `db:"assignment_id"`
	UserID       int64      `db:"user_id"`
	QuestID      uuid.UUID  `db:"quest_id"`
	Status       string     `db:"status"`
	SelectedAt   time.Time  `db:"selected_at"`
	CompletedAt  *time.Time `db:"completed_at"`
}

var questColumns = []string{
	"quest_id", "path", "category", "difficulty", "title", "xp_reward", "is_active", "created_at",
}

var assignmentColumns = []string{
	"assignment_id", "user_id", "quest_id", "status", "selected_at", "completed_at",
}

func (q *QuestDefinition) toModel() *model.QuestDefinition {
	return &model.QuestDefinition{
		QuestID:    q.QuestID,
		Path:       q.Path,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Title:      q.Title,
		XPReward:   q.XPReward,
		IsActive:   q.IsActive,
		CreatedAt:  q.CreatedAt,
	}
}

func (a *QuestAssignment) toModel() *model.QuestAssignment {
	return &model.QuestAssignment{
		AssignmentID: a.AssignmentID,
		UserID:       a.UserID,
		QuestID:      a.QuestID,
		Status:       model.AssignmentStatus(a.Status),
		SelectedAt:   a.SelectedAt,
		CompletedAt:  a.CompletedAt,
	}
}

func (r *Repository) CreateQuest(ctx context.Context, quest *model.QuestDefinition) error {
	query, args, err := squirrel.
		Insert("quest_definitions").
		SetMap(map[string]interface{}{
			"quest_id":   quest.QuestID,
			"path":       quest.Path,
			"category":   quest.Category,
			"difficulty": quest.Difficulty,
			"title":      quest.Title,
			"xp_reward":  quest.XPReward,
			"is_active":  quest.IsActive,
			"created_at": quest.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quest insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert quest: %w", translate(err))
	}

	return nil
}

func (r *Repository) ListQuests(ctx context.Context, path string) ([]*model.QuestDefinition, error) {
	query, args, err := squirrel.
		Select(questColumns...).
		From("quest_definitions").
		Where(squirrel.Eq{"path": path, "is_active": true}).
		OrderBy("category", "xp_reward", "title").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []QuestDefinition
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	quests := make([]*model.QuestDefinition, len(rows))
	for i := range rows {
		quests[i] = rows[i].toModel()
	}

	return quests, nil
}

func (r *Repository) ListAssignments(ctx context.Context, userID int64, status model.AssignmentStatus) ([]*model.QuestAssignment, error) {
	where := squirrel.Eq{"user_id": userID}
	if status != "" {
		where["status"] = string(status)
	}

	query, args, err := squirrel.
		Select(assignmentColumns...).
		From("quest_assignments").
		Where(where).
		OrderBy("selected_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []QuestAssignment
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	assignments := make([]*model.QuestAssignment, len(rows))
	for i := range rows {
		assignments[i] = rows[i].toModel()
	}

	return assignments, nil
}

func (t *Tx) GetQuest(ctx context.Context, questID uuid.UUID) (*model.QuestDefinition, error) {
	query, args, err := squirrel.
		Select(questColumns...).
		From("quest_definitions").
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var q QuestDefinition
	if err = t.tx.GetContext(ctx, &q, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return q.toModel(), nil
}

func (t *Tx) FindActiveAssignment(ctx context.Context, userID int64, questID uuid.UUID) (*model.QuestAssignment, error) {
	query, args, err := squirrel.
		Select(assignmentColumns...).
		From("quest_assignments").
		Where(squirrel.Eq{
			"user_id":  userID,
			"quest_id": questID,
			"status":   string(model.AssignmentActive),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return getAssignment(ctx, t.tx, query, args...)
}

func (t *Tx) LockAssignment(ctx context.Context, assignmentID uuid.UUID) (*model.QuestAssignment, error) {
	query, args, err := squirrel.
		Select(assignmentColumns...).
		From("quest_assignments").
		Where(squirrel.Eq{"assignment_id": assignmentID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return getAssignment(ctx, t.tx, query, args...)
}

func getAssignment(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.QuestAssignment, error) {
	var a QuestAssignment
	if err := sqlx.GetContext(ctx, q, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return a.toModel(), nil
}

func (t *Tx) TouchAssignment(ctx context.Context, assignmentID uuid.UUID, at time.Time) error {
	query, args, err := squirrel.
		Update("quest_assignments").
		Set("selected_at", at).
		Where(squirrel.Eq{"assignment_id": assignmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return execOne(ctx, t.tx, query, args...)
}

func (t *Tx) CountActiveAssignments(ctx context.Context, userID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("quest_assignments").
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  string(model.AssignmentActive),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err = t.tx.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}

	return n, nil
}

// InsertAssignment stores a new active assignment. If an active one already
// exists for the pair, its selected_at is refreshed and its id returned.
func (t *Tx) InsertAssignment(ctx context.Context, a *model.QuestAssignment) (uuid.UUID, error) {
	query, args, err := squirrel.
		Insert("quest_assignments").
		Columns("assignment_id", "user_id", "quest_id", "status", "selected_at").
		Values(a.AssignmentID, a.UserID, a.QuestID, string(model.AssignmentActive), a.SelectedAt).
		Suffix("ON CONFLICT (user_id, quest_id) WHERE status = 'active' " +
			"DO UPDATE SET selected_at = EXCLUDED.selected_at RETURNING assignment_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build assignment insert query: %w", err)
	}

	var id uuid.UUID
	if err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, translate(err)
	}

	return id, nil
}

func (t *Tx) MarkAssignmentCompleted(ctx context.Context, assignmentID uuid.UUID, at time.Time) error {
	query, args, err := squirrel.
		Update("quest_assignments").
		SetMap(map[string]interface{}{
			"status":       string(model.AssignmentCompleted),
			"completed_at": at,
		}).
		Where(squirrel.Eq{
			"assignment_id": assignmentID,
			"status":        string(model.AssignmentActive),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return execOne(ctx, t.tx, query, args...)
}

// InsertCompletion records the completion of an assignment and returns the id
// of the stored row, which is the existing one if the assignment was already
// completed.
func (t *Tx) InsertCompletion(ctx context.Context, c *model.CompletionRecord) (uuid.UUID, error) {
	query, args, err := squirrel.
		Insert("quest_completions").
		Columns("completion_id", "assignment_id", "user_id", "note", "completed_at").
		Values(c.CompletionID, c.AssignmentID, c.UserID, c.Note, c.CompletedAt).
		Suffix("ON CONFLICT (assignment_id) DO NOTHING RETURNING completion_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build completion insert query: %w", err)
	}

	var id uuid.UUID
	err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, translate(err)
	}

	existing, args, err := squirrel.
		Select("completion_id").
		From("quest_completions").
		Where(squirrel.Eq{"assignment_id": c.AssignmentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	if err = t.tx.GetContext(ctx, &id, existing, args...); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}
