package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"soundcrate/internal/models"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateAlbumSuccess(t *testing.T) {
	s, mock := newMock(t)

	release := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO albums (title, artist_id, genre_id, album_type, duration_ms)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, release_date, duration_ms
	`)).
		WithArgs("Mezzanine", int64(42), int64(3), models.AlbumTypeAlbum).
		WillReturnRows(sqlmock.NewRows([]string{"id", "release_date", "duration_ms"}).
			AddRow(int64(7), release, int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO images (url, size)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("media/img/albums/01062024/cover_small.jpg", models.ImageSizeSmall).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO album_images (album_id, image_id)
		VALUES ($1, $2)
	`)).
		WithArgs(int64(7), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO images (url, size)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("media/img/albums/01062024/cover_normal.jpg", models.ImageSizeNormal).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO album_images (album_id, image_id)
		VALUES ($1, $2)
	`)).
		WithArgs(int64(7), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	album := models.Album{
		Title:     "Mezzanine",
		AlbumType: models.AlbumTypeAlbum,
		Artist:    &models.User{ID: 42},
		Genre:     &models.Genre{ID: 3},
	}
	err := s.CreateAlbum(context.Background(), &album,
		models.Image{URL: "media/img/albums/01062024/cover_small.jpg", Size: models.ImageSizeSmall},
		models.Image{URL: "media/img/albums/01062024/cover_normal.jpg", Size: models.ImageSizeNormal},
	)
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}

	if album.ID != 7 {
		t.Fatalf("album.ID = %d, want 7", album.ID)
	}
	if album.DurationMS != 0 {
		t.Fatalf("album.DurationMS = %d, want 0", album.DurationMS)
	}
	if len(album.Images) != 2 || album.Images[0].ID != 11 || album.Images[1].ID != 12 {
		t.Fatalf("unexpected images: %+v", album.Images)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAlbumRollsBackOnImageFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO albums`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "release_date", "duration_ms"}).
			AddRow(int64(7), time.Now(), int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO images`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	album := models.Album{
		Title:     "Dummy",
		AlbumType: models.AlbumTypeAlbum,
		Artist:    &models.User{ID: 1},
		Genre:     &models.Genre{ID: 1},
	}
	err := s.CreateAlbum(context.Background(), &album,
		models.Image{URL: "a", Size: models.ImageSizeSmall},
		models.Image{URL: "b", Size: models.ImageSizeNormal},
	)
	if err == nil {
		t.Fatal("expected error")
	}

	// The album insert must have been rolled back, never committed.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlbumPartial(t *testing.T) {
	s, mock := newMock(t)

	title := "Renamed"
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE albums
		SET title = COALESCE($2, title),
		    album_type = COALESCE($3, album_type),
		    genre_id = COALESCE($4, genre_id)
		WHERE id = $1
	`)).
		WithArgs(int64(7), "Renamed", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpdateAlbum(context.Background(), 7, AlbumUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateAlbum: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAlbumNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE albums`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateAlbum(context.Background(), 999, AlbumUpdate{})
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("err = %v, want ErrAlbumNotFound", err)
	}
}

func TestUpdateAlbumImagesOverwritesBothVariants(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE images
		SET url = $2
		WHERE size = $3
		  AND id IN (SELECT image_id FROM album_images WHERE album_id = $1)
	`)).
		WithArgs(int64(7), "small.jpg", models.ImageSizeSmall).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE images
		SET url = $2
		WHERE size = $3
		  AND id IN (SELECT image_id FROM album_images WHERE album_id = $1)
	`)).
		WithArgs(int64(7), "normal.jpg", models.ImageSizeNormal).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.UpdateAlbumImages(context.Background(), 7, "small.jpg", "normal.jpg"); err != nil {
		t.Fatalf("UpdateAlbumImages: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetAlbumNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT a.id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetAlbum(context.Background(), 404)
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("err = %v, want ErrAlbumNotFound", err)
	}
}
