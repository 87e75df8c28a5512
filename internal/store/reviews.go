package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// Review is one user's rating and comment for a song. A user can hold at
// most one review per song.
type Review struct {
	ID        int64     `json:"id"`
	SongID    int64     `json:"songId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// CreateReview stores a review against the song named by the catalog
// reference, creating the song on first review. Song stats are recomputed in
// the same transaction.
func (s *Store) CreateReview(ctx context.Context, userID int64, ref SongRef, rating int, comment string) (Review, error) {
	if err := validateRating(rating); err != nil {
		return Review{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Review{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	songID, err := findOrCreateSongTx(ctx, tx, ref)
	if err != nil {
		return Review{}, err
	}

	var review Review
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (song_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, song_id, user_id, rating, comment, like_count, created_at
	`, songID, userID, rating, comment).Scan(
		&review.ID, &review.SongID, &review.UserID, &review.Rating, &review.Comment,
		&review.LikeCount, &review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Review{}, ErrDuplicateReview
		}
		return Review{}, fmt.Errorf("insert review: %w", err)
	}

	if err := recomputeSongStatsTx(ctx, tx, songID); err != nil {
		return Review{}, err
	}

	if err := tx.Commit(); err != nil {
		return Review{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return review, nil
}

// UpdateReview changes the rating and comment of the caller's review and
// recomputes the song's stats in the same transaction.
func (s *Store) UpdateReview(ctx context.Context, userID, reviewID int64, rating int, comment string) (Review, error) {
	if err := validateRating(rating); err != nil {
		return Review{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Review{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var review Review
	err = tx.QueryRowContext(ctx, `
		UPDATE reviews
		SET rating = $3, comment = $4
		WHERE id = $1 AND user_id = $2
		RETURNING id, song_id, user_id, rating, comment, like_count, created_at
	`, reviewID, userID, rating, comment).Scan(
		&review.ID, &review.SongID, &review.UserID, &review.Rating, &review.Comment,
		&review.LikeCount, &review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, fmt.Errorf("update review: %w", err)
	}

	if err := recomputeSongStatsTx(ctx, tx, review.SongID); err != nil {
		return Review{}, err
	}

	if err := tx.Commit(); err != nil {
		return Review{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return review, nil
}

// DeleteReview removes the caller's review and recomputes the song's stats
// in the same transaction.
func (s *Store) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var songID int64
	err = tx.QueryRowContext(ctx, `
		DELETE FROM reviews
		WHERE id = $1 AND user_id = $2
		RETURNING song_id
	`, reviewID, userID).Scan(&songID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if err := recomputeSongStatsTx(ctx, tx, songID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// ReviewsBySong lists a song's reviews. Sort is "likes" for most-liked first,
// anything else for newest first.
func (s *Store) ReviewsBySong(ctx context.Context, songID int64, sort string) ([]Review, error) {
	order := "r.created_at DESC"
	if sort == "likes" {
		order = "r.like_count DESC, r.created_at DESC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.song_id, r.user_id, u.username, r.rating, r.comment, r.like_count, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.song_id = $1
		ORDER BY `+order, songID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// ReviewsByUser lists a user's reviews, newest first.
func (s *Store) ReviewsByUser(ctx context.Context, userID int64) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.song_id, r.user_id, u.username, r.rating, r.comment, r.like_count, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

func collectReviews(rows *sql.Rows) ([]Review, error) {
	var reviews []Review
	for rows.Next() {
		var (
			review  Review
			comment sql.NullString
		)
		if err := rows.Scan(&review.ID, &review.SongID, &review.UserID, &review.Username,
			&review.Rating, &comment, &review.LikeCount, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		review.Comment = comment.String
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// recomputeSongStatsTx re-derives review_count and average_rating from the
// full review set. Full recomputation is deliberate: it cannot drift the way
// incremental deltas can when an update path is missed. The average is
// rounded to one decimal and is 0.0 for an empty set.
func recomputeSongStatsTx(ctx context.Context, tx *sql.Tx, songID int64) error {
	var (
		count int
		avg   float64
	)
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE song_id = $1
	`, songID).Scan(&count, &avg); err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}

	avg = math.Round(avg*10) / 10

	if _, err := tx.ExecContext(ctx, `
		UPDATE songs
		SET review_count = $2, average_rating = $3
		WHERE id = $1
	`, songID, count, avg); err != nil {
		return fmt.Errorf("update song stats: %w", err)
	}
	return nil
}
