package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	favoriteDeleteQuery = `
		DELETE FROM favorites WHERE user_id = $1 AND song_id = $2
	`
	favoriteInsertQuery = `
			INSERT INTO favorites (user_id, song_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, song_id) DO NOTHING
		`
)

func TestToggleFavoriteOn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(songExistsQuery)).
		WithArgs(int64(7)).
		WillReturnRows(boolRow(true))
	mock.ExpectExec(regexp.QuoteMeta(favoriteDeleteQuery)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(favoriteInsertQuery)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	favorited, err := s.ToggleFavorite(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("ToggleFavorite error: %v", err)
	}
	if !favorited {
		t.Fatal("expected favorited=true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleFavoriteOff(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(songExistsQuery)).
		WithArgs(int64(7)).
		WillReturnRows(boolRow(true))
	mock.ExpectExec(regexp.QuoteMeta(favoriteDeleteQuery)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	favorited, err := s.ToggleFavorite(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("ToggleFavorite error: %v", err)
	}
	if favorited {
		t.Fatal("expected favorited=false")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleFavoriteRaceResolvesAsRemoval(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(songExistsQuery)).
		WithArgs(int64(7)).
		WillReturnRows(boolRow(true))
	mock.ExpectExec(regexp.QuoteMeta(favoriteDeleteQuery)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// A concurrent toggle added the edge between the delete and the insert:
	// ON CONFLICT inserts nothing and the transaction stays usable.
	mock.ExpectExec(regexp.QuoteMeta(favoriteInsertQuery)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`
			DELETE FROM favorites WHERE user_id = $1 AND song_id = $2
		`)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	favorited, err := s.ToggleFavorite(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("ToggleFavorite error: %v", err)
	}
	if favorited {
		t.Fatal("expected race to resolve as removal")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleFavoriteSongMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(songExistsQuery)).
		WithArgs(int64(404)).
		WillReturnRows(boolRow(false))
	mock.ExpectRollback()

	if _, err := s.ToggleFavorite(context.Background(), 1, 404); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatusForSong(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery("SELECT").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"liked", "favorited", "reviewed"}).AddRow(true, false, true))

	status, err := s.StatusForSong(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("StatusForSong error: %v", err)
	}
	if !status.Liked || status.Favorited || !status.Reviewed {
		t.Fatalf("unexpected status: %#v", status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
