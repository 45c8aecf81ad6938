package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQuery  = `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	byEmailQuery = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQuery    = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_LowercasesEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs("Alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), ts, ts))

	got, err := repo.Create(context.Background(), &models.User{Name: "Alice", Email: "Alice@Example.COM", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Email != "alice@example.com" || !got.CreatedAt.Equal(ts) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("A", "a@b.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"})

	_, err := repo.Create(context.Background(), &models.User{Name: "A", Email: "A@B.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("A", "a@b.com", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Name: "A", Email: "a@b.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrStore) || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.com"})
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Missing) != 2 || ve.Missing[0] != "name" || ve.Missing[1] != "password" {
		t.Fatalf("unexpected missing fields: %v", ve.Missing)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now().UTC()
	mock.ExpectQuery(byEmailQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "Alice", "alice@example.com", "hash", ts, ts))

	got, err := repo.GetByEmail(context.Background(), "  ALICE@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != 1 || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now().UTC()
	mock.ExpectQuery(byIDQuery).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(9), "Bob", "bob@example.com", "hash", ts, ts))
	mock.ExpectQuery(byIDQuery).WithArgs(int64(10)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(byIDQuery).WithArgs(int64(11)).WillReturnError(errors.New("conn reset"))

	got, err := repo.GetByID(context.Background(), 9)
	if err != nil || got.Email != "bob@example.com" {
		t.Fatalf("got %+v, err=%v", got, err)
	}
	if _, err := repo.GetByID(context.Background(), 10); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), 11); !errors.Is(err, common.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
