package search

import (
	"context"

	"github.com/rs/zerolog"

	"mymusicopinion/internal/musicapi"
	"mymusicopinion/internal/store"
)

// Store defines the persistence hooks for enriching catalog results with
// locally stored review stats.
type Store interface {
	SongStatsByTrackIDs(ctx context.Context, trackIDs []int64) (map[int64]store.Song, error)
}

// Result is a catalog track annotated with stored review stats when the
// track has been reviewed locally.
type Result struct {
	Track         musicapi.Track `json:"track"`
	SongID        int64          `json:"song_id,omitempty"`
	ReviewCount   int            `json:"review_count"`
	AverageRating float64        `json:"average_rating"`
}

// Service exposes catalog search against the external music provider.
type Service interface {
	Search(ctx context.Context, term string, kind musicapi.SearchType) ([]Result, error)
	ArtistAlbums(ctx context.Context, artist string) ([]musicapi.Album, error)
	VideoID(ctx context.Context, term string) (string, error)
}

type service struct {
	client musicapi.Client
	videos musicapi.VideoFinder
	store  Store
	logger zerolog.Logger
}

// New constructs a search Service backed by the given catalog client and
// Store. videos may be nil when no video provider is configured; lookups then
// report not found.
func New(client musicapi.Client, videos musicapi.VideoFinder, st Store, logger zerolog.Logger) Service {
	return &service{client: client, videos: videos, store: st, logger: logger}
}

// Search queries the catalog provider and overlays stored review stats onto
// tracks that exist locally. A failed overlay is logged and the plain catalog
// results are returned, so search never fails on a stats lookup.
func (s *service) Search(ctx context.Context, term string, kind musicapi.SearchType) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks, err := s.client.SearchTracks(ctx, term, kind)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(tracks))
	trackIDs := make([]int64, len(tracks))
	for i, track := range tracks {
		results[i] = Result{Track: track}
		trackIDs[i] = track.TrackID
	}

	stats, err := s.store.SongStatsByTrackIDs(ctx, trackIDs)
	if err != nil {
		s.logger.Warn().Err(err).Str("term", term).Msg("search stats overlay failed")
		return results, nil
	}

	for i := range results {
		if song, ok := stats[results[i].Track.TrackID]; ok {
			results[i].SongID = song.ID
			results[i].ReviewCount = song.ReviewCount
			results[i].AverageRating = song.AverageRating
		}
	}
	return results, nil
}

func (s *service) ArtistAlbums(ctx context.Context, artist string) ([]musicapi.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.client.ArtistAlbums(ctx, artist)
}

func (s *service) VideoID(ctx context.Context, term string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.videos == nil {
		return "", musicapi.ErrVideoNotFound
	}
	return s.videos.SearchVideoID(ctx, term)
}
