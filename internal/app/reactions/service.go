package reactions

import (
	"context"

	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for reaction workflows. The store owns
// edge uniqueness and counter maintenance; this service only sequences calls.
type Store interface {
	ToggleLike(ctx context.Context, userID int64, kind store.TargetKind, targetID int64) (bool, error)
	ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error)
	StatusForSong(ctx context.Context, userID, songID int64) (store.SongStatus, error)
	FavoriteSongs(ctx context.Context, userID int64) ([]store.Song, error)
}

// Service coordinates like and favorite toggles.
type Service interface {
	ToggleLike(ctx context.Context, userID int64, kind store.TargetKind, targetID int64) (bool, error)
	ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error)
	SongStatus(ctx context.Context, userID, songID int64) (store.SongStatus, error)
	Favorites(ctx context.Context, userID int64) ([]store.Song, error)
}

type service struct {
	store Store
}

// New constructs a reactions Service backed by the given Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) ToggleLike(ctx context.Context, userID int64, kind store.TargetKind, targetID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleLike(ctx, userID, kind, targetID)
}

func (s *service) ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleFavorite(ctx, userID, songID)
}

func (s *service) SongStatus(ctx context.Context, userID, songID int64) (store.SongStatus, error) {
	if err := ctx.Err(); err != nil {
		return store.SongStatus{}, err
	}
	return s.store.StatusForSong(ctx, userID, songID)
}

func (s *service) Favorites(ctx context.Context, userID int64) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.FavoriteSongs(ctx, userID)
}
