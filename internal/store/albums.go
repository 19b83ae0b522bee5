package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"soundcrate/internal/models"
)

// AlbumFilter narrows album listings.
type AlbumFilter struct {
	ArtistID      int64
	SavedByUserID int64
}

// AlbumUpdate carries the scalar fields of a partial album update. Nil
// fields are left untouched.
type AlbumUpdate struct {
	Title     *string
	AlbumType *string
	GenreID   *int64
}

const albumSelect = `
	SELECT a.id, a.title, a.album_type, a.release_date, a.duration_ms,
	       ar.id, ar.username, ar.about, ar.avatar, ar.is_active, ar.date_joined,
	       g.id, g.title
	FROM albums a
	JOIN users ar ON ar.id = a.artist_id
	JOIN genres g ON g.id = a.genre_id`

// ListAlbums returns albums with artist, genre, images and tracks (each
// with its artist) eagerly loaded.
func (s *Store) ListAlbums(ctx context.Context, filter AlbumFilter) ([]models.Album, error) {
	query := albumSelect
	var args []any
	switch {
	case filter.SavedByUserID != 0:
		query += `
	JOIN saved_albums sa ON sa.album_id = a.id
	WHERE sa.user_id = $1
	ORDER BY sa.id ASC`
		args = append(args, filter.SavedByUserID)
	case filter.ArtistID != 0:
		query += `
	WHERE a.artist_id = $1
	ORDER BY a.id ASC`
		args = append(args, filter.ArtistID)
	default:
		query += `
	ORDER BY a.id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// GetAlbum returns a single album with the same relation set as ListAlbums.
func (s *Store) GetAlbum(ctx context.Context, id int64) (models.Album, error) {
	row := s.db.QueryRowContext(ctx, albumSelect+`
	WHERE a.id = $1`, id)

	album, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Album{}, ErrAlbumNotFound
	}
	if err != nil {
		return models.Album{}, err
	}

	albums := []models.Album{album}
	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return models.Album{}, err
	}
	return albums[0], nil
}

// CreateAlbum persists a new album together with its two cover image
// variants in one transaction; a partially created album is never
// observable.
func (s *Store) CreateAlbum(ctx context.Context, album *models.Album, small, normal models.Image) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx, `
		INSERT INTO albums (title, artist_id, genre_id, album_type, duration_ms)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, release_date, duration_ms
	`, album.Title, album.Artist.ID, album.Genre.ID, album.AlbumType).
		Scan(&album.ID, &album.ReleaseDate, &album.DurationMS); err != nil {
		return fmt.Errorf("insert album: %w", err)
	}

	album.Images = album.Images[:0]
	for _, img := range []models.Image{small, normal} {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO images (url, size)
			VALUES ($1, $2)
			RETURNING id
		`, img.URL, img.Size).Scan(&img.ID); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO album_images (album_id, image_id)
			VALUES ($1, $2)
		`, album.ID, img.ID); err != nil {
			return fmt.Errorf("attach image: %w", err)
		}
		album.Images = append(album.Images, img)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit album create: %w", err)
	}
	return nil
}

// UpdateAlbum applies a partial update of scalar album fields.
func (s *Store) UpdateAlbum(ctx context.Context, id int64, upd AlbumUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE albums
		SET title = COALESCE($2, title),
		    album_type = COALESCE($3, album_type),
		    genre_id = COALESCE($4, genre_id)
		WHERE id = $1
	`, id, upd.Title, upd.AlbumType, upd.GenreID)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// UpdateAlbumImages overwrites the URL of each existing cover variant
// in place, atomically. The same two image rows are reused.
func (s *Store) UpdateAlbumImages(ctx context.Context, albumID int64, smallURL, normalURL string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, v := range []struct {
		size string
		url  string
	}{
		{models.ImageSizeSmall, smallURL},
		{models.ImageSizeNormal, normalURL},
	} {
		if _, err = tx.ExecContext(ctx, `
			UPDATE images
			SET url = $2
			WHERE size = $3
			  AND id IN (SELECT image_id FROM album_images WHERE album_id = $1)
		`, albumID, v.url, v.size); err != nil {
			return fmt.Errorf("update album image: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit image update: %w", err)
	}
	return nil
}

// DeleteAlbum removes an album; relation rows cascade.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row rowScanner) (models.Album, error) {
	var (
		album  models.Album
		artist models.User
		genre  models.Genre
	)
	err := row.Scan(
		&album.ID, &album.Title, &album.AlbumType, &album.ReleaseDate, &album.DurationMS,
		&artist.ID, &artist.Username, &artist.About, &artist.Avatar, &artist.IsActive, &artist.DateJoined,
		&genre.ID, &genre.Title,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Album{}, err
		}
		return models.Album{}, fmt.Errorf("scan album: %w", err)
	}
	album.Artist = &artist
	album.Genre = &genre
	album.Images = []models.Image{}
	album.Tracks = []models.Track{}
	return album, nil
}

// attachAlbumRelations loads images and tracks for all albums at once,
// two queries regardless of the album count.
func (s *Store) attachAlbumRelations(ctx context.Context, albums []models.Album) error {
	if len(albums) == 0 {
		return nil
	}

	index := make(map[int64]*models.Album, len(albums))
	ids := make([]int64, 0, len(albums))
	for i := range albums {
		index[albums[i].ID] = &albums[i]
		ids = append(ids, albums[i].ID)
	}

	images, err := s.loadImagesByParent(ctx, "album_images", "album_id", ids)
	if err != nil {
		return err
	}
	for albumID, imgs := range images {
		if album, ok := index[albumID]; ok {
			album.Images = append(album.Images, imgs...)
		}
	}

	trackRows, err := s.db.QueryContext(ctx, `
		SELECT t.album_id,
		       t.id, t.title, t.file, t.is_playable, t.explicit, t.text, t.duration_ms, t.number,
		       ar.id, ar.username, ar.about, ar.avatar, ar.is_active, ar.date_joined
		FROM tracks t
		JOIN users ar ON ar.id = t.artist_id
		WHERE t.album_id = ANY($1)
		ORDER BY t.number ASC, t.id ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load album tracks: %w", err)
	}
	defer trackRows.Close()
	for trackRows.Next() {
		var (
			albumID int64
			track   models.Track
			artist  models.User
		)
		if err := trackRows.Scan(
			&albumID,
			&track.ID, &track.Title, &track.File, &track.IsPlayable, &track.Explicit,
			&track.Text, &track.DurationMS, &track.Number,
			&artist.ID, &artist.Username, &artist.About, &artist.Avatar, &artist.IsActive, &artist.DateJoined,
		); err != nil {
			return fmt.Errorf("scan album track: %w", err)
		}
		track.Artist = &artist
		if album, ok := index[albumID]; ok {
			album.Tracks = append(album.Tracks, track)
		}
	}
	if err := trackRows.Err(); err != nil {
		return fmt.Errorf("iterate album tracks: %w", err)
	}

	return nil
}
