package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"soundcrate/internal/models"
)

// PlaylistFilter narrows playlist listings.
type PlaylistFilter struct {
	AuthorID      int64
	SavedByUserID int64
}

// PlaylistUpdate carries the scalar fields of a partial playlist
// update. Nil fields are left untouched.
type PlaylistUpdate struct {
	Title *string
}

const playlistSelect = `
	SELECT p.id, p.title, p.duration_ms,
	       au.id, au.username, au.about, au.avatar, au.is_active, au.date_joined
	FROM playlists p
	JOIN users au ON au.id = p.author_id`

// ListPlaylists returns playlists with author, artists, tracks (with
// artist, in insertion order) and images eagerly loaded.
func (s *Store) ListPlaylists(ctx context.Context, filter PlaylistFilter) ([]models.Playlist, error) {
	query := playlistSelect
	var args []any
	switch {
	case filter.SavedByUserID != 0:
		query += `
	JOIN saved_playlists sp ON sp.playlist_id = p.id
	WHERE sp.user_id = $1
	ORDER BY sp.id ASC`
		args = append(args, filter.SavedByUserID)
	case filter.AuthorID != 0:
		query += `
	WHERE p.author_id = $1
	ORDER BY p.id ASC`
		args = append(args, filter.AuthorID)
	default:
		query += `
	ORDER BY p.id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	if err := s.attachPlaylistRelations(ctx, playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// GetPlaylist returns a single playlist with the same relation set as
// ListPlaylists.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (models.Playlist, error) {
	row := s.db.QueryRowContext(ctx, playlistSelect+`
	WHERE p.id = $1`, id)

	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, err
	}

	playlists := []models.Playlist{playlist}
	if err := s.attachPlaylistRelations(ctx, playlists); err != nil {
		return models.Playlist{}, err
	}
	return playlists[0], nil
}

// CreatePlaylist persists a new playlist together with its two cover
// image variants in one transaction.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist, small, normal models.Image) error {
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
		INSERT INTO playlists (title, author_id, duration_ms)
		VALUES ($1, $2, 0)
		RETURNING id, duration_ms
	`, playlist.Title, playlist.Author.ID).Scan(&playlist.ID, &playlist.DurationMS); err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}

	playlist.Images = playlist.Images[:0]
	for _, img := range []models.Image{small, normal} {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO images (url, size)
			VALUES ($1, $2)
			RETURNING id
		`, img.URL, img.Size).Scan(&img.ID); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_images (playlist_id, image_id)
			VALUES ($1, $2)
		`, playlist.ID, img.ID); err != nil {
			return fmt.Errorf("attach image: %w", err)
		}
		playlist.Images = append(playlist.Images, img)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist create: %w", err)
	}
	return nil
}

// UpdatePlaylist applies a partial update of scalar playlist fields.
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, upd PlaylistUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET title = COALESCE($2, title)
		WHERE id = $1
	`, id, upd.Title)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// UpdatePlaylistImages overwrites the URL of each existing cover
// variant in place, atomically.
func (s *Store) UpdatePlaylistImages(ctx context.Context, playlistID int64, smallURL, normalURL string) error {
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
			  AND id IN (SELECT image_id FROM playlist_images WHERE playlist_id = $1)
		`, playlistID, v.url, v.size); err != nil {
			return fmt.Errorf("update playlist image: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit image update: %w", err)
	}
	return nil
}

// DeletePlaylist removes a playlist; relation rows cascade.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// AddPlaylistTracks appends the given tracks, registers their artists
// and sets the new denormalized duration, all in one transaction. The
// caller passes only memberships that do not exist yet; artist inserts
// are idempotent regardless.
func (s *Store) AddPlaylistTracks(ctx context.Context, playlistID int64, trackIDs, artistIDs []int64, durationMS int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, trackID := range trackIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, track_id, position)
			VALUES ($1, $2, (
				SELECT COALESCE(MAX(position), 0) + 1
				FROM playlist_tracks
				WHERE playlist_id = $1
			))
			ON CONFLICT (playlist_id, track_id) DO NOTHING
		`, playlistID, trackID); err != nil {
			return fmt.Errorf("insert playlist track: %w", err)
		}
	}

	for _, artistID := range artistIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_artists (playlist_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (playlist_id, user_id) DO NOTHING
		`, playlistID, artistID); err != nil {
			return fmt.Errorf("insert playlist artist: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE playlists
		SET duration_ms = $2
		WHERE id = $1
	`, playlistID, durationMS); err != nil {
		return fmt.Errorf("update playlist duration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist track add: %w", err)
	}
	return nil
}

// RemovePlaylistTracks deletes the given memberships, prunes artists
// that no longer have a member track and sets the new denormalized
// duration, all in one transaction. The caller passes only ids that are
// actual members and the artist ids that must remain.
func (s *Store) RemovePlaylistTracks(ctx context.Context, playlistID int64, trackIDs, keepArtistIDs []int64, durationMS int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM playlist_tracks
		WHERE playlist_id = $1 AND track_id = ANY($2)
	`, playlistID, pq.Array(trackIDs)); err != nil {
		return fmt.Errorf("delete playlist tracks: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM playlist_artists
		WHERE playlist_id = $1 AND NOT (user_id = ANY($2))
	`, playlistID, pq.Array(keepArtistIDs)); err != nil {
		return fmt.Errorf("prune playlist artists: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE playlists
		SET duration_ms = $2
		WHERE id = $1
	`, playlistID, durationMS); err != nil {
		return fmt.Errorf("update playlist duration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist track remove: %w", err)
	}
	return nil
}

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var (
		playlist models.Playlist
		author   models.User
	)
	err := row.Scan(
		&playlist.ID, &playlist.Title, &playlist.DurationMS,
		&author.ID, &author.Username, &author.About, &author.Avatar, &author.IsActive, &author.DateJoined,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Playlist{}, err
		}
		return models.Playlist{}, fmt.Errorf("scan playlist: %w", err)
	}
	playlist.Author = &author
	playlist.Artists = []models.User{}
	playlist.Tracks = []models.Track{}
	playlist.Images = []models.Image{}
	return playlist, nil
}

// attachPlaylistRelations loads artists, member tracks and images for
// all playlists at once, three queries regardless of the playlist count.
func (s *Store) attachPlaylistRelations(ctx context.Context, playlists []models.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}

	index := make(map[int64]*models.Playlist, len(playlists))
	ids := make([]int64, 0, len(playlists))
	for i := range playlists {
		index[playlists[i].ID] = &playlists[i]
		ids = append(ids, playlists[i].ID)
	}

	artistRows, err := s.db.QueryContext(ctx, `
		SELECT pa.playlist_id, u.id, u.username, u.about, u.avatar, u.is_active, u.date_joined
		FROM playlist_artists pa
		JOIN users u ON u.id = pa.user_id
		WHERE pa.playlist_id = ANY($1)
		ORDER BY pa.id ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load playlist artists: %w", err)
	}
	defer artistRows.Close()
	for artistRows.Next() {
		var (
			playlistID int64
			artist     models.User
		)
		if err := artistRows.Scan(
			&playlistID,
			&artist.ID, &artist.Username, &artist.About, &artist.Avatar, &artist.IsActive, &artist.DateJoined,
		); err != nil {
			return fmt.Errorf("scan playlist artist: %w", err)
		}
		if playlist, ok := index[playlistID]; ok {
			playlist.Artists = append(playlist.Artists, artist)
		}
	}
	if err := artistRows.Err(); err != nil {
		return fmt.Errorf("iterate playlist artists: %w", err)
	}

	trackRows, err := s.db.QueryContext(ctx, `
		SELECT pt.playlist_id,
		       t.id, t.title, t.file, t.is_playable, t.explicit, t.text, t.duration_ms, t.number,
		       ar.id, ar.username, ar.about, ar.avatar, ar.is_active, ar.date_joined
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		JOIN users ar ON ar.id = t.artist_id
		WHERE pt.playlist_id = ANY($1)
		ORDER BY pt.position ASC, pt.id ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load playlist tracks: %w", err)
	}
	defer trackRows.Close()
	for trackRows.Next() {
		var (
			playlistID int64
			track      models.Track
			artist     models.User
		)
		if err := trackRows.Scan(
			&playlistID,
			&track.ID, &track.Title, &track.File, &track.IsPlayable, &track.Explicit,
			&track.Text, &track.DurationMS, &track.Number,
			&artist.ID, &artist.Username, &artist.About, &artist.Avatar, &artist.IsActive, &artist.DateJoined,
		); err != nil {
			return fmt.Errorf("scan playlist track: %w", err)
		}
		track.Artist = &artist
		if playlist, ok := index[playlistID]; ok {
			playlist.Tracks = append(playlist.Tracks, track)
		}
	}
	if err := trackRows.Err(); err != nil {
		return fmt.Errorf("iterate playlist tracks: %w", err)
	}

	images, err := s.loadImagesByParent(ctx, "playlist_images", "playlist_id", ids)
	if err != nil {
		return err
	}
	for playlistID, imgs := range images {
		if playlist, ok := index[playlistID]; ok {
			playlist.Images = append(playlist.Images, imgs...)
		}
	}
	return nil
}
