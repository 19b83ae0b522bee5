// Package saved implements the user library: tracks, albums and
// playlists a user has saved. Saving is idempotent and removal of an
// absent save is silent.
package saved

import (
	"context"
	"net/url"

	"soundcrate/internal/app/albums"
	"soundcrate/internal/app/playlists"
	"soundcrate/internal/models"
	"soundcrate/internal/page"
)

// Store captures the persistence needs for the user library.
type Store interface {
	GetTrack(ctx context.Context, id int64) (models.Track, error)
	GetAlbum(ctx context.Context, id int64) (models.Album, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)

	SaveTrack(ctx context.Context, userID, trackID int64) error
	SaveAlbum(ctx context.Context, userID, albumID int64) error
	SavePlaylist(ctx context.Context, userID, playlistID int64) error

	UnsaveTrack(ctx context.Context, userID, trackID int64) error
	UnsaveAlbum(ctx context.Context, userID, albumID int64) error
	UnsavePlaylist(ctx context.Context, userID, playlistID int64) error

	ListSavedTracks(ctx context.Context, userID int64) ([]models.Track, error)
	ListSavedAlbums(ctx context.Context, userID int64) ([]models.Album, error)
	ListSavedPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error)
}

// Service exposes the user library.
type Service interface {
	Tracks(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	Albums(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[albums.Album], error)
	Playlists(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[playlists.Playlist], error)

	SaveTrack(ctx context.Context, userID, trackID int64) error
	SaveAlbum(ctx context.Context, userID, albumID int64) error
	SavePlaylist(ctx context.Context, userID, playlistID int64) error

	UnsaveTrack(ctx context.Context, userID, trackID int64) error
	UnsaveAlbum(ctx context.Context, userID, albumID int64) error
	UnsavePlaylist(ctx context.Context, userID, playlistID int64) error
}

type service struct {
	store Store
	base  *url.URL
}

// New constructs a Service. base is the public URL the API is served
// under.
func New(st Store, base *url.URL) Service {
	return &service{store: st, base: base}
}

func (s *service) Tracks(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error) {
	tracks, err := s.store.ListSavedTracks(ctx, userID)
	if err != nil {
		return page.Page[models.Track]{}, err
	}
	return page.Paginate(tracks, offset, limit, u), nil
}

func (s *service) Albums(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[albums.Album], error) {
	saved, err := s.store.ListSavedAlbums(ctx, userID)
	if err != nil {
		return page.Page[albums.Album]{}, err
	}

	wrapped := make([]albums.Album, 0, len(saved))
	for _, album := range saved {
		wrapped = append(wrapped, albums.Wrap(album, s.base))
	}
	return page.Paginate(wrapped, offset, limit, u), nil
}

func (s *service) Playlists(ctx context.Context, userID int64, u *url.URL, offset, limit int) (page.Page[playlists.Playlist], error) {
	saved, err := s.store.ListSavedPlaylists(ctx, userID)
	if err != nil {
		return page.Page[playlists.Playlist]{}, err
	}

	wrapped := make([]playlists.Playlist, 0, len(saved))
	for _, playlist := range saved {
		wrapped = append(wrapped, playlists.Wrap(playlist, s.base))
	}
	return page.Paginate(wrapped, offset, limit, u), nil
}

// SaveTrack saves a track into the user's library. The target must
// exist; saving it again is a no-op.
func (s *service) SaveTrack(ctx context.Context, userID, trackID int64) error {
	if _, err := s.store.GetTrack(ctx, trackID); err != nil {
		return err
	}
	return s.store.SaveTrack(ctx, userID, trackID)
}

// SaveAlbum saves an album into the user's library, idempotently.
func (s *service) SaveAlbum(ctx context.Context, userID, albumID int64) error {
	if _, err := s.store.GetAlbum(ctx, albumID); err != nil {
		return err
	}
	return s.store.SaveAlbum(ctx, userID, albumID)
}

// SavePlaylist saves a playlist into the user's library, idempotently.
func (s *service) SavePlaylist(ctx context.Context, userID, playlistID int64) error {
	if _, err := s.store.GetPlaylist(ctx, playlistID); err != nil {
		return err
	}
	return s.store.SavePlaylist(ctx, userID, playlistID)
}

func (s *service) UnsaveTrack(ctx context.Context, userID, trackID int64) error {
	return s.store.UnsaveTrack(ctx, userID, trackID)
}

func (s *service) UnsaveAlbum(ctx context.Context, userID, albumID int64) error {
	return s.store.UnsaveAlbum(ctx, userID, albumID)
}

func (s *service) UnsavePlaylist(ctx context.Context, userID, playlistID int64) error {
	return s.store.UnsavePlaylist(ctx, userID, playlistID)
}
