package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iudanet/retailapi/internal/models"
	"github.com/iudanet/retailapi/internal/server/storage"
)

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return newWithDB(db), mock, db
}

func TestCreateUser_Success(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT INTO users \(id, username, password_hash, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s*$`

	user := &models.User{
		ID:           "7e2a9f70-0000-0000-0000-000000000001",
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec(q).
		WithArgs(user.ID, user.Username, user.PasswordHash, user.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	// Unique violation от PostgreSQL превращается в ErrUserAlreadyExists
	mock.ExpectExec(`(?s)INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"})

	err := s.CreateUser(context.Background(), &models.User{Username: "alice"})
	if !errors.Is(err, storage.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestCreateUser_DBError(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT INTO users`).
		WillReturnError(errors.New("db down"))

	err := s.CreateUser(context.Background(), &models.User{Username: "alice"})
	if err == nil || errors.Is(err, storage.ErrUserAlreadyExists) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByUsername_Success(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow("user-1", "alice", "$2a$10$hash", created)

	mock.ExpectQuery(`(?s)SELECT id, username, password_hash, created_at\s+FROM users\s+WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := s.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername error: %v", err)
	}
	if user.ID != "user-1" || user.Username != "alice" || user.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT id, username, password_hash, created_at\s+FROM users\s+WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT id, username, password_hash, created_at\s+FROM users\s+WHERE id = \$1`).
		WithArgs("user-404").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByID(context.Background(), "user-404")
	if !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
