package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^\s*INSERT\s+INTO\s+sessions\s*\(user_id,\s*session_token,\s*expires\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	findQuery   = `(?s)^\s*SELECT\s+user_id,\s*session_token,\s*expires\s+FROM\s+sessions\s+WHERE\s+session_token\s*=\s*\$1\s*$`
	deleteQuery = `(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+session_token\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(insertQuery).WithArgs(int64(3), "tok", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertQuery).WithArgs(int64(3), "dup", exp).WillReturnError(errors.New("unique violation"))

	require.NoError(t, repo.Create(context.Background(), &models.Session{UserID: 3, Token: "tok", ExpiresAt: exp}))

	err := repo.Create(context.Background(), &models.Session{UserID: 3, Token: "dup", ExpiresAt: exp})
	assert.ErrorIs(t, err, common.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFind(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(findQuery).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "session_token", "expires"}).AddRow(int64(3), "tok", exp))
	mock.ExpectQuery(findQuery).WithArgs("gone").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(findQuery).WithArgs("boom").WillReturnError(errors.New("timeout"))

	s, err := repo.Find(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &models.Session{UserID: 3, Token: "tok", ExpiresAt: exp}, s)

	_, err = repo.Find(context.Background(), "gone")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Find(context.Background(), "boom")
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQuery).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQuery).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQuery).WithArgs("boom").WillReturnError(errors.New("timeout"))

	assert.NoError(t, repo.Delete(context.Background(), "tok"))
	assert.NoError(t, repo.Delete(context.Background(), "missing"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "boom"), common.ErrStore)
}
