package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSaveTrackIdempotent(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO saved_tracks (user_id, track_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, track_id) DO NOTHING
	`)).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second save conflicts and inserts nothing.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO saved_tracks`)).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.SaveTrack(context.Background(), 1, 9); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveTrack(context.Background(), 1, 9); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnsaveAlbumAbsentIsNoError(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM saved_albums
		WHERE user_id = $1 AND album_id = $2
	`)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UnsaveAlbum(context.Background(), 1, 7); err != nil {
		t.Fatalf("unsave absent: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSavePlaylist(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO saved_playlists (user_id, playlist_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, playlist_id) DO NOTHING
	`)).
		WithArgs(int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SavePlaylist(context.Background(), 1, 3); err != nil {
		t.Fatalf("SavePlaylist: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
