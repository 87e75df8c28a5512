package posts

import (
	"context"

	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for post workflows.
type Store interface {
	CreatePost(ctx context.Context, userID int64, title, content, category string, ref *store.SongRef) (store.Post, error)
	PostByID(ctx context.Context, id int64) (store.Post, error)
	ListPosts(ctx context.Context, filter store.PostFilter) ([]store.Post, error)
	UpdatePost(ctx context.Context, userID, postID int64, title, content string) (store.Post, error)
	DeletePost(ctx context.Context, userID, postID int64) error
}

// Service coordinates discussion board posts.
type Service interface {
	Create(ctx context.Context, userID int64, title, content, category string, ref *store.SongRef) (store.Post, error)
	Get(ctx context.Context, id int64) (store.Post, error)
	List(ctx context.Context, filter store.PostFilter) ([]store.Post, error)
	Update(ctx context.Context, userID, postID int64, title, content string) (store.Post, error)
	Delete(ctx context.Context, userID, postID int64) error
}

type service struct {
	store Store
}

// New constructs a posts Service backed by the given Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, userID int64, title, content, category string, ref *store.SongRef) (store.Post, error) {
	if err := ctx.Err(); err != nil {
		return store.Post{}, err
	}
	return s.store.CreatePost(ctx, userID, title, content, category, ref)
}

func (s *service) Get(ctx context.Context, id int64) (store.Post, error) {
	if err := ctx.Err(); err != nil {
		return store.Post{}, err
	}
	return s.store.PostByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter store.PostFilter) ([]store.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPosts(ctx, filter)
}

func (s *service) Update(ctx context.Context, userID, postID int64, title, content string) (store.Post, error) {
	if err := ctx.Err(); err != nil {
		return store.Post{}, err
	}
	return s.store.UpdatePost(ctx, userID, postID, title, content)
}

func (s *service) Delete(ctx context.Context, userID, postID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, userID, postID)
}
