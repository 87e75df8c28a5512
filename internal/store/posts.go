package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Post categories. RECOMMEND posts may carry an attached song.
const (
	CategoryFree      = "FREE"
	CategoryRecommend = "RECOMMEND"
)

// Post is a discussion board entry.
type Post struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Username     string    `json:"username,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	SongID       *int64    `json:"songId,omitempty"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostFilter restricts post listings.
type PostFilter struct {
	Category string
	Limit    int
	Offset   int
}

// CreatePost stores a new post. RECOMMEND posts with a catalog reference get
// the referenced song attached, created on first sight.
func (s *Store) CreatePost(ctx context.Context, userID int64, title, content, category string, ref *SongRef) (Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Post{}, fmt.Errorf("title is required")
	}
	if category == "" {
		category = CategoryFree
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var songID *int64
	if category == CategoryRecommend && ref != nil {
		id, err := findOrCreateSongTx(ctx, tx, *ref)
		if err != nil {
			return Post{}, err
		}
		songID = &id
	}

	var post Post
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (user_id, title, content, category, song_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, content, category, song_id, like_count, comment_count, created_at
	`, userID, title, content, category, songID).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.Category,
		&post.SongID, &post.LikeCount, &post.CommentCount, &post.CreatedAt,
	)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Post{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return post, nil
}

// PostByID loads a single post with its author's username.
func (s *Store) PostByID(ctx context.Context, id int64) (Post, error) {
	var post Post
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.user_id, u.username, p.title, p.content, p.category, p.song_id,
		       p.like_count, p.comment_count, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, id).Scan(
		&post.ID, &post.UserID, &post.Username, &post.Title, &post.Content, &post.Category,
		&post.SongID, &post.LikeCount, &post.CommentCount, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("lookup post: %w", err)
	}
	return post, nil
}

// ListPosts returns posts matching the filter, newest first.
func (s *Store) ListPosts(ctx context.Context, filter PostFilter) ([]Post, error) {
	query := `
		SELECT p.id, p.user_id, u.username, p.title, p.content, p.category, p.song_id,
		       p.like_count, p.comment_count, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" WHERE p.category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}

	query += " ORDER BY p.created_at DESC, p.id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.Username, &post.Title, &post.Content, &post.Category,
			&post.SongID, &post.LikeCount, &post.CommentCount, &post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// PostsByUser lists a user's posts, newest first.
func (s *Store) PostsByUser(ctx context.Context, userID int64) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, u.username, p.title, p.content, p.category, p.song_id,
		       p.like_count, p.comment_count, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.Username, &post.Title, &post.Content, &post.Category,
			&post.SongID, &post.LikeCount, &post.CommentCount, &post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// UpdatePost changes the title and content of the caller's post. Category
// and creation time are immutable.
func (s *Store) UpdatePost(ctx context.Context, userID, postID int64, title, content string) (Post, error) {
	var post Post
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $3, content = $4
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, content, category, song_id, like_count, comment_count, created_at
	`, postID, userID, title, content).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.Category,
		&post.SongID, &post.LikeCount, &post.CommentCount, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// DeletePost removes the caller's post.
func (s *Store) DeletePost(ctx context.Context, userID, postID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM posts WHERE id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}
