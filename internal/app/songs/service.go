package songs

import (
	"context"

	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for song lookups.
type Store interface {
	SongByID(ctx context.Context, id int64) (store.Song, error)
	SongByTrackID(ctx context.Context, itunesTrackID int64) (store.Song, error)
	ListSongs(ctx context.Context, filter store.SongFilter) ([]store.Song, error)
	TopSongsByArtist(ctx context.Context, artist string, limit int) ([]store.Song, error)
}

// Service exposes song catalog queries. Songs are created as a side effect
// of reviews and recommendations, never directly.
type Service interface {
	Get(ctx context.Context, id int64) (store.Song, error)
	GetByTrackID(ctx context.Context, trackID int64) (store.Song, error)
	List(ctx context.Context, filter store.SongFilter) ([]store.Song, error)
	TopByArtist(ctx context.Context, artist string) ([]store.Song, error)
}

// topTracksLimit caps an artist's top-tracks listing.
const topTracksLimit = 10

type service struct {
	store Store
}

// New constructs a songs Service backed by the given Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Get(ctx context.Context, id int64) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}

func (s *service) GetByTrackID(ctx context.Context, trackID int64) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.SongByTrackID(ctx, trackID)
}

func (s *service) List(ctx context.Context, filter store.SongFilter) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx, filter)
}

func (s *service) TopByArtist(ctx context.Context, artist string) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TopSongsByArtist(ctx, artist, topTracksLimit)
}
