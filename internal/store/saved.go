package store

import (
	"context"
	"fmt"

	"soundcrate/internal/models"
)

// SaveTrack records a user's save of a track. Saving twice is a no-op:
// the (user, track) pair is unique and conflicts are ignored.
func (s *Store) SaveTrack(ctx context.Context, userID, trackID int64) error {
	return s.save(ctx, "saved_tracks", "track_id", userID, trackID)
}

// SaveAlbum records a user's save of an album, idempotently.
func (s *Store) SaveAlbum(ctx context.Context, userID, albumID int64) error {
	return s.save(ctx, "saved_albums", "album_id", userID, albumID)
}

// SavePlaylist records a user's save of a playlist, idempotently.
func (s *Store) SavePlaylist(ctx context.Context, userID, playlistID int64) error {
	return s.save(ctx, "saved_playlists", "playlist_id", userID, playlistID)
}

// UnsaveTrack removes a saved track. Removing an absent save affects
// zero rows and is not an error.
func (s *Store) UnsaveTrack(ctx context.Context, userID, trackID int64) error {
	return s.unsave(ctx, "saved_tracks", "track_id", userID, trackID)
}

// UnsaveAlbum removes a saved album; absent saves are ignored.
func (s *Store) UnsaveAlbum(ctx context.Context, userID, albumID int64) error {
	return s.unsave(ctx, "saved_albums", "album_id", userID, albumID)
}

// UnsavePlaylist removes a saved playlist; absent saves are ignored.
func (s *Store) UnsavePlaylist(ctx context.Context, userID, playlistID int64) error {
	return s.unsave(ctx, "saved_playlists", "playlist_id", userID, playlistID)
}

// ListSavedTracks returns the user's saved tracks in save order, with
// the full track relation set.
func (s *Store) ListSavedTracks(ctx context.Context, userID int64) ([]models.Track, error) {
	return s.ListTracks(ctx, TrackFilter{SavedByUserID: userID})
}

// ListSavedAlbums returns the user's saved albums in save order, with
// the full album relation set.
func (s *Store) ListSavedAlbums(ctx context.Context, userID int64) ([]models.Album, error) {
	return s.ListAlbums(ctx, AlbumFilter{SavedByUserID: userID})
}

// ListSavedPlaylists returns the user's saved playlists in save order,
// with the full playlist relation set.
func (s *Store) ListSavedPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error) {
	return s.ListPlaylists(ctx, PlaylistFilter{SavedByUserID: userID})
}

func (s *Store) save(ctx context.Context, table, targetColumn string, userID, targetID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s)
		VALUES ($1, $2)
		ON CONFLICT (user_id, %s) DO NOTHING
	`, table, targetColumn, targetColumn)
	if _, err := s.db.ExecContext(ctx, query, userID, targetID); err != nil {
		return fmt.Errorf("save into %s: %w", table, err)
	}
	return nil
}

func (s *Store) unsave(ctx context.Context, table, targetColumn string, userID, targetID int64) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND %s = $2
	`, table, targetColumn)
	if _, err := s.db.ExecContext(ctx, query, userID, targetID); err != nil {
		return fmt.Errorf("unsave from %s: %w", table, err)
	}
	return nil
}
