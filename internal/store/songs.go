package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Song is a catalog-derived track carrying denormalized engagement stats.
// Songs have no owner; they are created on demand from catalog lookups.
type Song struct {
	ID            int64   `json:"id"`
	ItunesTrackID *int64  `json:"itunesTrackId,omitempty"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	ReleaseYear   int     `json:"releaseYear,omitempty"`
	LikeCount     int     `json:"likeCount"`
	ReviewCount   int     `json:"reviewCount"`
	AverageRating float64 `json:"averageRating"`
}

// SongRef identifies a catalog track for find-or-create lookups.
type SongRef struct {
	ItunesTrackID int64  `json:"itunesTrackId"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	ImageURL      string `json:"imageUrl"`
	Genre         string `json:"genre"`
	ReleaseYear   int    `json:"releaseYear"`
}

// SongFilter defines criteria for listing songs.
type SongFilter struct {
	Title        string
	Artist       string
	Genre        string
	OnlyReviewed bool
	Limit        int
	Offset       int
}

const songColumns = `id, itunes_track_id, title, artist, album, image_url, genre, release_year,
		       like_count, review_count, average_rating`

func scanSong(row interface{ Scan(...any) error }) (Song, error) {
	var (
		song    Song
		trackID sql.NullInt64
		album   sql.NullString
		image   sql.NullString
		genre   sql.NullString
		year    sql.NullInt32
	)
	if err := row.Scan(&song.ID, &trackID, &song.Title, &song.Artist, &album, &image, &genre, &year,
		&song.LikeCount, &song.ReviewCount, &song.AverageRating); err != nil {
		return Song{}, err
	}
	if trackID.Valid {
		song.ItunesTrackID = &trackID.Int64
	}
	song.Album = album.String
	song.ImageURL = image.String
	song.Genre = genre.String
	song.ReleaseYear = int(year.Int32)
	return song, nil
}

// SongByID loads a single song.
func (s *Store) SongByID(ctx context.Context, id int64) (Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("lookup song: %w", err)
	}
	return song, nil
}

// SongByTrackID loads a song by its catalog identifier.
func (s *Store) SongByTrackID(ctx context.Context, itunesTrackID int64) (Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE itunes_track_id = $1
	`, itunesTrackID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("lookup song: %w", err)
	}
	return song, nil
}

// ListSongs returns songs matching the filter, most reviewed first.
func (s *Store) ListSongs(ctx context.Context, filter SongFilter) ([]Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Title != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Title+"%")
		argIdx++
	}
	if filter.Artist != "" {
		query += fmt.Sprintf(" AND artist ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Artist+"%")
		argIdx++
	}
	if filter.Genre != "" {
		query += fmt.Sprintf(" AND genre ILIKE $%d", argIdx)
		args = append(args, filter.Genre)
		argIdx++
	}
	if filter.OnlyReviewed {
		query += " AND review_count > 0"
	}

	query += " ORDER BY review_count DESC, id ASC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
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
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// TopSongsByArtist returns an artist's best rated songs, capped at limit.
// The artist match is a case-insensitive substring, same as ListSongs.
func (s *Store) TopSongsByArtist(ctx context.Context, artist string, limit int) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE artist ILIKE $1
		ORDER BY average_rating DESC, review_count DESC, id ASC
		LIMIT $2
	`, "%"+artist+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("query top songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// SongStatsByTrackIDs returns stored songs keyed by catalog track id, used to
// overlay review stats onto external search results.
func (s *Store) SongStatsByTrackIDs(ctx context.Context, trackIDs []int64) (map[int64]Song, error) {
	if len(trackIDs) == 0 {
		return map[int64]Song{}, nil
	}

	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE itunes_track_id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("query songs by track ids: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]Song)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		if song.ItunesTrackID != nil {
			result[*song.ItunesTrackID] = song
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return result, nil
}

// findOrCreateSongTx resolves a catalog reference to a stored song id,
// creating the row on first sight. Runs inside the caller's transaction so
// song creation commits atomically with the triggering mutation.
func findOrCreateSongTx(ctx context.Context, tx *sql.Tx, ref SongRef) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM songs WHERE itunes_track_id = $1
	`, ref.ItunesTrackID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup song by track id: %w", err)
	}

	genre := ref.Genre
	if genre == "" {
		genre = "Pop"
	}

	// ON CONFLICT DO NOTHING yields no row when another transaction created
	// the song first, without aborting this transaction.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO songs (itunes_track_id, title, artist, album, image_url, genre, release_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (itunes_track_id) DO NOTHING
		RETURNING id
	`, ref.ItunesTrackID, ref.Title, ref.Artist, ref.Album, ref.ImageURL, genre, ref.ReleaseYear).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("insert song: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM songs WHERE itunes_track_id = $1
	`, ref.ItunesTrackID).Scan(&id); err != nil {
		return 0, fmt.Errorf("reload song after conflict: %w", err)
	}
	return id, nil
}
