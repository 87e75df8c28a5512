package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TargetKind identifies the entity a like applies to.
type TargetKind string

const (
	TargetSong    TargetKind = "song"
	TargetReview  TargetKind = "review"
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// likeTarget describes how one target kind is resolved and how its like
// counter is adjusted. Every kind shares the same toggle path below.
type likeTarget struct {
	table    string
	notFound error
}

var likeTargets = map[TargetKind]likeTarget{
	TargetSong:    {table: "songs", notFound: ErrSongNotFound},
	TargetReview:  {table: "reviews", notFound: ErrReviewNotFound},
	TargetPost:    {table: "posts", notFound: ErrPostNotFound},
	TargetComment: {table: "post_comments", notFound: ErrCommentNotFound},
}

// ToggleLike flips the like state for (user, kind, target) and keeps the
// target's like_count in step, all inside one transaction. It returns the
// post-toggle state. A concurrent duplicate insert for the same edge is
// resolved as "already liked, now unliking" rather than surfaced.
func (s *Store) ToggleLike(ctx context.Context, userID int64, kind TargetKind, targetID int64) (bool, error) {
	target, ok := likeTargets[kind]
	if !ok {
		return false, fmt.Errorf("unknown like target kind %q", kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var targetExists bool
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, target.table),
		targetID,
	).Scan(&targetExists); err != nil {
		return false, fmt.Errorf("load %s: %w", kind, err)
	}
	if !targetExists {
		return false, target.notFound
	}

	var hasEdge bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND target_kind = $2 AND target_id = $3)
	`, userID, kind, targetID).Scan(&hasEdge); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	liked := false
	if hasEdge {
		if err := removeLikeTx(ctx, tx, userID, kind, targetID, target.table); err != nil {
			return false, err
		}
	} else {
		// ON CONFLICT keeps the transaction alive when a concurrent toggle
		// inserts the same edge between the check above and this statement.
		res, err := tx.ExecContext(ctx, `
			INSERT INTO likes (user_id, target_kind, target_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, target_kind, target_id) DO NOTHING
		`, userID, kind, targetID)
		if err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rows affected: %w", err)
		}
		if inserted > 0 {
			if err := adjustLikeCountTx(ctx, tx, target.table, targetID, +1); err != nil {
				return false, err
			}
			liked = true
		} else {
			// Lost a race with a concurrent toggle for the same edge: the
			// edge exists now, so this call resolves as a removal.
			if err := removeLikeTx(ctx, tx, userID, kind, targetID, target.table); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return liked, nil
}

// LikeExists reports whether the reaction edge is present. The edge table is
// the source of truth; like state is never inferred from counters.
func (s *Store) LikeExists(ctx context.Context, userID int64, kind TargetKind, targetID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND target_kind = $2 AND target_id = $3)
	`, userID, kind, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

func removeLikeTx(ctx context.Context, tx *sql.Tx, userID int64, kind TargetKind, targetID int64, table string) error {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM likes
		WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
	`, userID, kind, targetID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil
	}
	return adjustLikeCountTx(ctx, tx, table, targetID, -1)
}

// adjustLikeCountTx applies the counter delta atomically at the storage
// layer. Decrements are floored at zero so the counter stays non-negative
// even if it was already inconsistent.
func adjustLikeCountTx(ctx context.Context, tx *sql.Tx, table string, id int64, delta int) error {
	var query string
	if delta < 0 {
		query = fmt.Sprintf(`UPDATE %s SET like_count = GREATEST(like_count - 1, 0) WHERE id = $1`, table)
	} else {
		query = fmt.Sprintf(`UPDATE %s SET like_count = like_count + 1 WHERE id = $1`, table)
	}
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("adjust like count on %s: %w", table, err)
	}
	return nil
}
