package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soundcrate/internal/models"
)

// TrackFilter narrows track listings.
type TrackFilter struct {
	AlbumID       int64
	SavedByUserID int64
}

// TrackUpdate carries the fields of a partial track update. Nil fields
// are left untouched. File and DurationMS are set together when a new
// audio file was uploaded.
type TrackUpdate struct {
	Title      *string
	IsPlayable *bool
	Explicit   *bool
	Text       *string
	Number     *int
	File       *string
	DurationMS *int64
}

const trackSelect = `
	SELECT t.id, t.title, t.file, t.is_playable, t.explicit, t.text, t.duration_ms, t.number,
	       ar.id, ar.username, ar.about, ar.avatar, ar.is_active, ar.date_joined,
	       a.id, a.title, a.album_type, a.release_date, a.duration_ms,
	       aar.id, aar.username, aar.about, aar.avatar, aar.is_active, aar.date_joined,
	       g.id, g.title
	FROM tracks t
	JOIN users ar ON ar.id = t.artist_id
	JOIN albums a ON a.id = t.album_id
	JOIN users aar ON aar.id = a.artist_id
	JOIN genres g ON g.id = a.genre_id`

// ListTracks returns tracks with artist and album (the album with its
// own artist, genre and images) eagerly loaded.
func (s *Store) ListTracks(ctx context.Context, filter TrackFilter) ([]models.Track, error) {
	query := trackSelect
	var args []any
	switch {
	case filter.SavedByUserID != 0:
		query += `
	JOIN saved_tracks st ON st.track_id = t.id
	WHERE st.user_id = $1
	ORDER BY st.id ASC`
		args = append(args, filter.SavedByUserID)
	case filter.AlbumID != 0:
		query += `
	WHERE t.album_id = $1
	ORDER BY t.number ASC, t.id ASC`
		args = append(args, filter.AlbumID)
	default:
		query += `
	ORDER BY t.id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	if err := s.attachTrackAlbumImages(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetTrack returns a single track with the same relation set as ListTracks.
func (s *Store) GetTrack(ctx context.Context, id int64) (models.Track, error) {
	row := s.db.QueryRowContext(ctx, trackSelect+`
	WHERE t.id = $1`, id)

	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, ErrTrackNotFound
	}
	if err != nil {
		return models.Track{}, err
	}

	tracks := []models.Track{track}
	if err := s.attachTrackAlbumImages(ctx, tracks); err != nil {
		return models.Track{}, err
	}
	return tracks[0], nil
}

// AddAlbumTrack inserts a track and increments the parent album's
// denormalized duration in the same transaction.
func (s *Store) AddAlbumTrack(ctx context.Context, track *models.Track) error {
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
		INSERT INTO tracks (title, artist_id, album_id, file, is_playable, explicit, text, duration_ms, number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, track.Title, track.Artist.ID, track.Album.ID, track.File,
		track.IsPlayable, track.Explicit, track.Text, track.DurationMS, track.Number,
	).Scan(&track.ID); err != nil {
		return fmt.Errorf("insert track: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE albums
		SET duration_ms = duration_ms + $2
		WHERE id = $1
	`, track.Album.ID, track.DurationMS); err != nil {
		return fmt.Errorf("increment album duration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit track add: %w", err)
	}
	return nil
}

// UpdateAlbumTrack applies a partial track update and adjusts the
// parent album's duration by durationDelta in the same transaction.
func (s *Store) UpdateAlbumTrack(ctx context.Context, trackID, albumID int64, upd TrackUpdate, durationDelta int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE tracks
		SET title = COALESCE($3, title),
		    is_playable = COALESCE($4, is_playable),
		    explicit = COALESCE($5, explicit),
		    text = COALESCE($6, text),
		    number = COALESCE($7, number),
		    file = COALESCE($8, file),
		    duration_ms = COALESCE($9, duration_ms)
		WHERE id = $1 AND album_id = $2
	`, trackID, albumID, upd.Title, upd.IsPlayable, upd.Explicit, upd.Text, upd.Number, upd.File, upd.DurationMS)
	if err != nil {
		return fmt.Errorf("update track: %w", err)
	}
	if n, rowsErr := res.RowsAffected(); rowsErr == nil && n == 0 {
		err = ErrTrackNotFound
		return err
	}

	if durationDelta != 0 {
		if _, err = tx.ExecContext(ctx, `
			UPDATE albums
			SET duration_ms = duration_ms + $2
			WHERE id = $1
		`, albumID, durationDelta); err != nil {
			return fmt.Errorf("adjust album duration: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit track update: %w", err)
	}
	return nil
}

// DeleteTrack removes a track and decrements the parent album's
// duration in the same transaction.
func (s *Store) DeleteTrack(ctx context.Context, trackID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		albumID    int64
		durationMS int64
	)
	err = tx.QueryRowContext(ctx, `
		DELETE FROM tracks
		WHERE id = $1
		RETURNING album_id, duration_ms
	`, trackID).Scan(&albumID, &durationMS)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrTrackNotFound
		return err
	}
	if err != nil {
		return fmt.Errorf("delete track: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE albums
		SET duration_ms = duration_ms - $2
		WHERE id = $1
	`, albumID, durationMS); err != nil {
		return fmt.Errorf("decrement album duration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit track delete: %w", err)
	}
	return nil
}

func scanTrack(row rowScanner) (models.Track, error) {
	var (
		track       models.Track
		artist      models.User
		album       models.Album
		albumArtist models.User
		genre       models.Genre
	)
	err := row.Scan(
		&track.ID, &track.Title, &track.File, &track.IsPlayable, &track.Explicit,
		&track.Text, &track.DurationMS, &track.Number,
		&artist.ID, &artist.Username, &artist.About, &artist.Avatar, &artist.IsActive, &artist.DateJoined,
		&album.ID, &album.Title, &album.AlbumType, &album.ReleaseDate, &album.DurationMS,
		&albumArtist.ID, &albumArtist.Username, &albumArtist.About, &albumArtist.Avatar,
		&albumArtist.IsActive, &albumArtist.DateJoined,
		&genre.ID, &genre.Title,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Track{}, err
		}
		return models.Track{}, fmt.Errorf("scan track: %w", err)
	}
	track.Artist = &artist
	album.Artist = &albumArtist
	album.Genre = &genre
	album.Images = []models.Image{}
	track.Album = &album
	return track, nil
}

// attachTrackAlbumImages loads cover images for the albums referenced
// by tracks, one query for the whole batch.
func (s *Store) attachTrackAlbumImages(ctx context.Context, tracks []models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	byAlbum := make(map[int64][]*models.Album)
	ids := make([]int64, 0, len(tracks))
	for i := range tracks {
		album := tracks[i].Album
		if _, seen := byAlbum[album.ID]; !seen {
			ids = append(ids, album.ID)
		}
		byAlbum[album.ID] = append(byAlbum[album.ID], album)
	}

	images, err := s.loadImagesByParent(ctx, "album_images", "album_id", ids)
	if err != nil {
		return err
	}
	for albumID, albums := range byAlbum {
		for _, album := range albums {
			album.Images = append(album.Images, images[albumID]...)
		}
	}
	return nil
}
