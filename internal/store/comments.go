package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Comment is a reply on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Comment   string    `json:"comment"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateComment adds a comment to a post and increments the post's
// comment_count within the same transaction.
func (s *Store) CreateComment(ctx context.Context, userID, postID int64, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, fmt.Errorf("comment is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var postExists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID,
	).Scan(&postExists); err != nil {
		return Comment{}, fmt.Errorf("load post: %w", err)
	}
	if !postExists {
		return Comment{}, ErrPostNotFound
	}

	var comment Comment
	err = tx.QueryRowContext(ctx, `
		INSERT INTO post_comments (post_id, user_id, comment)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, comment, like_count, created_at
	`, postID, userID, text).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.Comment,
		&comment.LikeCount, &comment.CreatedAt,
	)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1
	`, postID); err != nil {
		return Comment{}, fmt.Errorf("adjust comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Comment{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return comment, nil
}

// CommentsByPost lists a post's comments, oldest first.
func (s *Store) CommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, c.comment, c.like_count, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Username,
			&comment.Comment, &comment.LikeCount, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

// UpdateComment changes the text of the caller's comment.
func (s *Store) UpdateComment(ctx context.Context, userID, commentID int64, text string) (Comment, error) {
	var comment Comment
	err := s.db.QueryRowContext(ctx, `
		UPDATE post_comments
		SET comment = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, post_id, user_id, comment, like_count, created_at
	`, commentID, userID, text).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.Comment,
		&comment.LikeCount, &comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrCommentNotFound
		}
		return Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes the caller's comment and decrements the post's
// comment_count within the same transaction, floored at zero.
func (s *Store) DeleteComment(ctx context.Context, userID, commentID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var postID int64
	err = tx.QueryRowContext(ctx, `
		DELETE FROM post_comments
		WHERE id = $1 AND user_id = $2
		RETURNING post_id
	`, commentID, userID).Scan(&postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE posts SET comment_count = GREATEST(comment_count - 1, 0) WHERE id = $1
	`, postID); err != nil {
		return fmt.Errorf("adjust comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
