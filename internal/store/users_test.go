package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const authenticateQuery = `
		SELECT id, username, bio, created_at, password_hash
		FROM users
		WHERE username = $1
	`

func TestAuthenticateSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(authenticateQuery)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "bio", "created_at", "password_hash"}).
			AddRow(int64(1), "alice", "hi", time.Now(), hash))

	user, err := s.Authenticate(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Bio != "hi" {
		t.Fatalf("unexpected user: %#v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Wrong password and unknown username must be indistinguishable to the
// caller: both collapse to ErrInvalidCredentials.
func TestAuthenticateFailuresAreUniform(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(authenticateQuery)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "bio", "created_at", "password_hash"}).
			AddRow(int64(1), "alice", "", time.Now(), hash))

	_, wrongPassErr := s.Authenticate(context.Background(), "alice", "not-hunter2")

	mock.ExpectQuery(regexp.QuoteMeta(authenticateQuery)).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, unknownUserErr := s.Authenticate(context.Background(), "nobody", "whatever")

	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassErr)
	}
	if !errors.Is(unknownUserErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownUserErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
	`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := s.CreateUser(context.Background(), "alice", "hunter2"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserRequiresFields(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	if err := s.CreateUser(context.Background(), "", "password"); err == nil {
		t.Fatal("expected error for empty username")
	}
	if err := s.CreateUser(context.Background(), "alice", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
