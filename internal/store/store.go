package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure. The same error is
	// returned for unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	ErrSongNotFound    = errors.New("song not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDuplicateReview signals the user already reviewed this song.
	ErrDuplicateReview = errors.New("review already exists for this song")
	// ErrInvalidRating rejects ratings outside the 1..5 scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
