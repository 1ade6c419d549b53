package store

import (
	"context"
	"testing"

	"glimpse/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// The Postgres driver reports unique violations as pgconn errors with SQLSTATE
// 23505; they must come back as the duplicate sentinel just like the
// translated gorm errors do.
func TestGormStore_InsertLike_PostgresUniqueViolation(t *testing.T) {
	db, mock := newMockPostgres(t)
	st := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "likes"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_likes_post_user"})
	mock.ExpectRollback()

	_, err := st.InsertLike(context.Background(), 5, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteLike_Postgres(t *testing.T) {
	db, mock := newMockPostgres(t)
	st := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes"`).
		WithArgs(uint(5), uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := st.DeleteLike(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
