package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"questlog/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestInTx_AwardCommitsTogether(t *testing.T) {
	repo, mock := newMockRepository(t)
	eventID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO xp_events")).
		WithArgs(sqlmock.AnyArg(), int64(1), "quest_completion", sqlmock.AnyArg(), 20, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow(eventID.String()))
	mock.ExpectQuery(q("UPDATE profiles SET total_xp = total_xp + $1 WHERE user_id = $2 RETURNING total_xp")).
		WithArgs(20, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total_xp"}).AddRow(20))
	mock.ExpectCommit()

	var total int
	err := repo.InTx(context.Background(), func(tx *Tx) error {
		inserted, err := tx.InsertXPEvent(context.Background(), &model.XPEvent{
			EventID:    eventID,
			UserID:     1,
			SourceType: model.SourceQuestCompletion,
			SourceID:   uuid.New(),
			Amount:     20,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			return err
		}
		assert.True(t, inserted)

		total, err = tx.IncrementTotalXP(context.Background(), 1, 20)
		return err
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertXPEvent_DuplicateReturnsFalse(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("ON CONFLICT (user_id, source_type, source_id) DO NOTHING RETURNING event_id")).
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(tx *Tx) error {
		inserted, err := tx.InsertXPEvent(context.Background(), &model.XPEvent{
			EventID:    uuid.New(),
			UserID:     1,
			SourceType: model.SourceWorkoutLog,
			SourceID:   uuid.New(),
			Amount:     20,
		})
		assert.False(t, inserted)
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(tx *Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_UniqueViolationIsConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(q("INSERT INTO profiles")).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.CreateProfile(context.Background(), &model.Profile{UserID: 1, DisplayName: "Ann", Path: "strength"})

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: pgUniqueViolation}), ErrConflict)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: pgForeignKeyViolation}), ErrNotFound)

	other := errors.New("other")
	assert.Equal(t, other, translate(other))
}

func TestConfig_GetDatabaseURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "app", Password: "secret", Name: "questlog"}

	assert.Equal(t, "postgres://app:secret@db:5432/questlog?sslmode=disable", cfg.GetDatabaseURL())
}
