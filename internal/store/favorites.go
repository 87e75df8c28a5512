package store

import (
	"context"
	"fmt"
)

// SongStatus reports the caller's relationship with a song.
type SongStatus struct {
	Liked     bool `json:"liked"`
	Favorited bool `json:"favorited"`
	Reviewed  bool `json:"reviewed"`
}

// ToggleFavorite flips the favorite state for (user, song) and returns the
// post-toggle state. Favorites carry no denormalized counter.
func (s *Store) ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var songExists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM songs WHERE id = $1)`, songID,
	).Scan(&songExists); err != nil {
		return false, fmt.Errorf("load song: %w", err)
	}
	if !songExists {
		return false, ErrSongNotFound
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND song_id = $2
	`, userID, songID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	favorited := false
	if affected == 0 {
		// ON CONFLICT keeps the transaction alive when a concurrent toggle
		// adds the edge first; zero rows inserted resolves as a removal.
		res, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (user_id, song_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, song_id) DO NOTHING
		`, userID, songID)
		if err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rows affected: %w", err)
		}
		if inserted > 0 {
			favorited = true
		} else if _, err := tx.ExecContext(ctx, `
			DELETE FROM favorites WHERE user_id = $1 AND song_id = $2
		`, userID, songID); err != nil {
			return false, fmt.Errorf("delete favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return favorited, nil
}

// FavoriteSongs lists the songs a user has favorited, newest first.
func (s *Store) FavoriteSongs(ctx context.Context, userID int64) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.itunes_track_id, s.title, s.artist, s.album, s.image_url, s.genre, s.release_year,
		       s.like_count, s.review_count, s.average_rating
		FROM favorites f
		JOIN songs s ON s.id = f.song_id
		WHERE f.user_id = $1
		ORDER BY f.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return songs, nil
}

// StatusForSong reports whether the user has liked, favorited, or reviewed
// the song.
func (s *Store) StatusForSong(ctx context.Context, userID, songID int64) (SongStatus, error) {
	var status SongStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND target_kind = 'song' AND target_id = $2),
			EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND song_id = $2),
			EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND song_id = $2)
	`, userID, songID).Scan(&status.Liked, &status.Favorited, &status.Reviewed)
	if err != nil {
		return SongStatus{}, fmt.Errorf("check song status: %w", err)
	}
	return status, nil
}
