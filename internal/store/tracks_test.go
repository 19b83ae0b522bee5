package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"soundcrate/internal/models"
)

func TestAddAlbumTrackIncrementsAlbumDuration(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO tracks (title, artist_id, album_id, file, is_playable, explicit, text, duration_ms, number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`)).
		WithArgs("Teardrop", int64(42), int64(7), "media/audio/tracks/01062024/teardrop.mp3",
			true, false, nil, int64(331000), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE albums
		SET duration_ms = duration_ms + $2
		WHERE id = $1
	`)).
		WithArgs(int64(7), int64(331000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	track := models.Track{
		Title:      "Teardrop",
		File:       "media/audio/tracks/01062024/teardrop.mp3",
		IsPlayable: true,
		DurationMS: 331000,
		Number:     1,
		Artist:     &models.User{ID: 42},
		Album:      &models.Album{ID: 7},
	}
	if err := s.AddAlbumTrack(context.Background(), &track); err != nil {
		t.Fatalf("AddAlbumTrack: %v", err)
	}
	if track.ID != 99 {
		t.Fatalf("track.ID = %d, want 99", track.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddAlbumTrackRollsBackOnDurationFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tracks`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE albums`)).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	track := models.Track{
		Title:  "Angel",
		Artist: &models.User{ID: 42},
		Album:  &models.Album{ID: 7},
	}
	if err := s.AddAlbumTrack(context.Background(), &track); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlbumTrackAdjustsDurationDelta(t *testing.T) {
	s, mock := newMock(t)

	file := "media/audio/tracks/02062024/angel_v2.mp3"
	duration := int64(380000)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE tracks
	`)).
		WithArgs(int64(99), int64(7), nil, nil, nil, nil, nil, file, duration).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE albums
		SET duration_ms = duration_ms + $2
		WHERE id = $1
	`)).
		WithArgs(int64(7), int64(49000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	upd := TrackUpdate{File: &file, DurationMS: &duration}
	if err := s.UpdateAlbumTrack(context.Background(), 99, 7, upd, 49000); err != nil {
		t.Fatalf("UpdateAlbumTrack: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlbumTrackNoDeltaSkipsAlbumUpdate(t *testing.T) {
	s, mock := newMock(t)

	title := "Renamed"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tracks`)).
		WithArgs(int64(99), int64(7), title, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.UpdateAlbumTrack(context.Background(), 99, 7, TrackUpdate{Title: &title}, 0); err != nil {
		t.Fatalf("UpdateAlbumTrack: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlbumTrackNotFoundRollsBack(t *testing.T) {
	s, mock := newMock(t)

	title := "Renamed"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tracks`)).
		WithArgs(int64(99), int64(7), title, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := s.UpdateAlbumTrack(context.Background(), 99, 7, TrackUpdate{Title: &title}, 0); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("err = %v, want ErrTrackNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteTrackDecrementsAlbumDuration(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		DELETE FROM tracks
		WHERE id = $1
		RETURNING album_id, duration_ms
	`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"album_id", "duration_ms"}).
			AddRow(int64(7), int64(331000)))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE albums
		SET duration_ms = duration_ms - $2
		WHERE id = $1
	`)).
		WithArgs(int64(7), int64(331000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.DeleteTrack(context.Background(), 99); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteTrackNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM tracks`)).
		WillReturnRows(sqlmock.NewRows([]string{"album_id", "duration_ms"}))
	mock.ExpectRollback()

	if err := s.DeleteTrack(context.Background(), 404); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("err = %v, want ErrTrackNotFound", err)
	}
}
