package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is compared against when the username does not exist so
// a login attempt costs the same whether or not the handle is registered.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

// User represents a registered account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
	`, username, hash); err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// Authenticate validates credentials and returns the matching user.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		user User
		bio  sql.NullString
		hash []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, bio, created_at, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &bio, &user.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	user.Bio = bio.String
	return user, nil
}

// UserByUsername resolves a username to its account.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	var (
		user User
		bio  sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, bio, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &bio, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	user.Bio = bio.String
	return user, nil
}

// UserByID loads an account by id.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var (
		user User
		bio  sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, bio, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &bio, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	user.Bio = bio.String
	return user, nil
}

// UpdateUser changes the bio and/or password of an account. Nil fields are
// left untouched.
func (s *Store) UpdateUser(ctx context.Context, userID int64, password, bio *string) (User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if password != nil && *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET password_hash = $2 WHERE id = $1
		`, userID, hash); err != nil {
			return User{}, fmt.Errorf("update password: %w", err)
		}
	}

	if bio != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET bio = $2 WHERE id = $1
		`, userID, *bio); err != nil {
			return User{}, fmt.Errorf("update bio: %w", err)
		}
	}

	var (
		user    User
		bioCol  sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, username, bio, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.Username, &bioCol, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("reload user: %w", err)
	}
	user.Bio = bioCol.String

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return user, nil
}
