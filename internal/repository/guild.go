package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"questlog/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Group struct {
	GroupID    uuid.UUID `db:"group_id"`
	Name       string    `db:"name"`
	OwnerID    int64     `db:"owner_id"`
	InviteCode string    `db:"invite_code"`
	CreatedAt  time.Time `db:"created_at"`
}

type groupWithMembers struct {
	Group
	MemberIDs pq.Int64Array `db:"member_ids"`
}

type Challenge struct {
	ChallengeID uuid.UUID `db:"challenge_id"`
	GroupID     uuid.UUID `db:"group_id"`
	Title       string    `db:"title"`
	StartsOn    time.Time `db:"starts_on"`
	EndsOn      time.Time `db:"ends_on"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

type standing struct {
	UserID      int64  `db:"user_id"`
	DisplayName string `db:"display_name"`
	XP          int    `db:"xp"`
}

var groupColumns = []string{"group_id", "name", "owner_id", "invite_code", "created_at"}

func (g *Group) toModel() *model.Group {
	return &model.Group{
		GroupID:    g.GroupID,
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		InviteCode: g.InviteCode,
		CreatedAt:  g.CreatedAt,
	}
}

// InsertGroup reports false when the invite code is already taken so the
// caller can retry with a fresh code inside the same transaction.
func (t *Tx) InsertGroup(ctx context.Context, g *model.Group) (bool, error) {
	query, args, err := squirrel.
		Insert("groups").
		Columns(groupColumns...).
		Values(g.GroupID, g.Name, g.OwnerID, strings.ToUpper(g.InviteCode), g.CreatedAt).
		Suffix("ON CONFLICT (invite_code) DO NOTHING RETURNING group_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build group insert query: %w", err)
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

// InsertMembership is a no-op returning false when the user already belongs
// to the group.
func (t *Tx) InsertMembership(ctx context.Context, m *model.GroupMembership) (bool, error) {
	query, args, err := squirrel.
		Insert("group_memberships").
		Columns("group_id", "user_id", "role", "joined_at").
		Values(m.GroupID, m.UserID, string(m.Role), m.JoinedAt).
		Suffix("ON CONFLICT (group_id, user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build membership insert query: %w", err)
	}

	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translate(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (t *Tx) FindGroupByCode(ctx context.Context, code string) (*model.Group, error) {
	query, args, err := squirrel.
		Select(groupColumns...).
		From("groups").
		Where(squirrel.Eq{"invite_code": strings.ToUpper(strings.TrimSpace(code))}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return getGroup(ctx, t.tx, query, args...)
}

func (r *Repository) GetGroup(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	query, args, err := squirrel.
		Select(groupColumns...).
		From("groups").
		Where(squirrel.Eq{"group_id": groupID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return getGroup(ctx, r.db, query, args...)
}

func getGroup(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Group, error) {
	var g Group
	if err := sqlx.GetContext(ctx, q, &g, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return g.toModel(), nil
}

func (r *Repository) IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From("group_memberships").
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *Repository) ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error) {
	query, args, err := squirrel.
		Select(
			"g.group_id",
			"g.name",
			"g.owner_id",
			"g.invite_code",
			"g.created_at",
			"array_agg(all_m.user_id ORDER BY all_m.joined_at) AS member_ids",
		).
		From("groups g").
		Join("group_memberships me ON me.group_id = g.group_id AND me.user_id = ?", userID).
		Join("group_memberships all_m ON all_m.group_id = g.group_id").
		GroupBy("g.group_id").
		OrderBy("g.created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []groupWithMembers
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]*model.Group, len(rows))
	for i := range rows {
		g := rows[i].Group.toModel()
		g.MemberIDs = []int64(rows[i].MemberIDs)
		groups[i] = g
	}

	return groups, nil
}

// GroupStandings sums ledger amounts per current member. Members without
// events in the window get a zero row. A nil since means no lower bound.
func (r *Repository) GroupStandings(ctx context.Context, groupID uuid.UUID, since *time.Time) ([]*model.LeaderboardEntry, error) {
	builder := squirrel.
		Select("gm.user_id", "p.display_name", "COALESCE(SUM(x.amount), 0) AS xp").
		From("group_memberships gm").
		Join("profiles p ON p.user_id = gm.user_id")

	if since != nil {
		builder = builder.LeftJoin("xp_events x ON x.user_id = gm.user_id AND x.created_at >= ?", *since)
	} else {
		builder = builder.LeftJoin("xp_events x ON x.user_id = gm.user_id")
	}

	query, args, err := builder.
		Where(squirrel.Eq{"gm.group_id": groupID}).
		GroupBy("gm.user_id", "p.display_name").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build standings query: %w", err)
	}

	var rows []standing
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to sum group xp: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, s := range rows {
		entries[i] = &model.LeaderboardEntry{
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			XP:          s.XP,
		}
	}

	return entries, nil
}

func (r *Repository) CreateChallenge(ctx context.Context, c *model.Challenge) error {
	query, args, err := squirrel.
		Insert("challenges").
		SetMap(map[string]interface{}{
			"challenge_id": c.ChallengeID,
			"group_id":     c.GroupID,
			"title":        c.Title,
			"starts_on":    c.StartsOn.Format(dateLayout),
			"ends_on":      c.EndsOn.Format(dateLayout),
			"created_by":   c.CreatedBy,
			"created_at":   c.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build challenge insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert challenge: %w", translate(err))
	}

	return nil
}

func (r *Repository) ListChallenges(ctx context.Context, groupID uuid.UUID) ([]*model.Challenge, error) {
	query, args, err := squirrel.
		Select("challenge_id", "group_id", "title", "starts_on", "ends_on", "created_by", "created_at").
		From("challenges").
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("starts_on DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []Challenge
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	challenges := make([]*model.Challenge, len(rows))
	for i, c := range rows {
		challenges[i] = &model.Challenge{
			ChallengeID: c.ChallengeID,
			GroupID:     c.GroupID,
			Title:       c.Title,
			StartsOn:    c.StartsOn,
			EndsOn:      c.EndsOn,
			CreatedBy:   c.CreatedBy,
			CreatedAt:   c.CreatedAt,
		}
	}

	return challenges, nil
}
