package reviews

import (
	"context"

	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for review workflows. Every mutation
// recomputes the song's aggregates inside the same transaction.
type Store interface {
	CreateReview(ctx context.Context, userID int64, ref store.SongRef, rating int, comment string) (store.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID int64, rating int, comment string) (store.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID int64) error
	ReviewsBySong(ctx context.Context, songID int64, sort string) ([]store.Review, error)
}

// Service coordinates review mutations and listings.
type Service interface {
	Create(ctx context.Context, userID int64, ref store.SongRef, rating int, comment string) (store.Review, error)
	Update(ctx context.Context, userID, reviewID int64, rating int, comment string) (store.Review, error)
	Delete(ctx context.Context, userID, reviewID int64) error
	ListBySong(ctx context.Context, songID int64, sort string) ([]store.Review, error)
}

type service struct {
	store Store
}

// New constructs a reviews Service backed by the given Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, userID int64, ref store.SongRef, rating int, comment string) (store.Review, error) {
	if err := ctx.Err(); err != nil {
		return store.Review{}, err
	}
	return s.store.CreateReview(ctx, userID, ref, rating, comment)
}

func (s *service) Update(ctx context.Context, userID, reviewID int64, rating int, comment string) (store.Review, error) {
	if err := ctx.Err(); err != nil {
		return store.Review{}, err
	}
	return s.store.UpdateReview(ctx, userID, reviewID, rating, comment)
}

func (s *service) Delete(ctx context.Context, userID, reviewID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteReview(ctx, userID, reviewID)
}

func (s *service) ListBySong(ctx context.Context, songID int64, sort string) ([]store.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ReviewsBySong(ctx, songID, sort)
}
