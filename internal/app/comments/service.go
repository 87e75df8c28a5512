package comments

import (
	"context"

	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for comment workflows. Comment
// creation and deletion keep the owning post's comment_count in step.
type Store interface {
	CreateComment(ctx context.Context, userID, postID int64, text string) (store.Comment, error)
	CommentsByPost(ctx context.Context, postID int64) ([]store.Comment, error)
	UpdateComment(ctx context.Context, userID, commentID int64, text string) (store.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID int64) error
}

// Service coordinates post comments.
type Service interface {
	Create(ctx context.Context, userID, postID int64, text string) (store.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]store.Comment, error)
	Update(ctx context.Context, userID, commentID int64, text string) (store.Comment, error)
	Delete(ctx context.Context, userID, commentID int64) error
}

type service struct {
	store Store
}

// New constructs a comments Service backed by the given Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, userID, postID int64, text string) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}
	return s.store.CreateComment(ctx, userID, postID, text)
}

func (s *service) ListByPost(ctx context.Context, postID int64) ([]store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CommentsByPost(ctx, postID)
}

func (s *service) Update(ctx context.Context, userID, commentID int64, text string) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}
	return s.store.UpdateComment(ctx, userID, commentID, text)
}

func (s *service) Delete(ctx context.Context, userID, commentID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, userID, commentID)
}
