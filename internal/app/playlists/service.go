// Package playlists implements playlist workflows: fetching playlists
// with their first track page, creating and updating them with cover
// variants, and maintaining the member track set together with its
// derived duration and artist roster.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"soundcrate/internal/media"
	"soundcrate/internal/models"
	"soundcrate/internal/page"
	"soundcrate/internal/store"
)

// Validation and authorization failures surfaced to the API layer.
var (
	ErrNotOwner      = errors.New("playlist does not belong to the authenticated user")
	ErrCoverRequired = errors.New("cover image is required")
	ErrTitleRequired = errors.New("title is required")
)

const (
	// Each embedded track page starts at the first page of this size.
	trackPageLimit = 15
	// Responses list at most this many artists per playlist.
	maxArtists = 15
)

// Playlist is the API shape of a playlist: the entity plus the first
// page of its tracks, with the artist roster capped.
type Playlist struct {
	models.Playlist
	Tracks page.Page[models.Track] `json:"tracks"`
}

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context, filter store.PlaylistFilter) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist, small, normal models.Image) error
	UpdatePlaylist(ctx context.Context, id int64, upd store.PlaylistUpdate) error
	UpdatePlaylistImages(ctx context.Context, playlistID int64, smallURL, normalURL string) error
	DeletePlaylist(ctx context.Context, id int64) error
	GetTrack(ctx context.Context, id int64) (models.Track, error)
	AddPlaylistTracks(ctx context.Context, playlistID int64, trackIDs, artistIDs []int64, durationMS int64) error
	RemovePlaylistTracks(ctx context.Context, playlistID int64, trackIDs, keepArtistIDs []int64, durationMS int64) error
}

// Files writes uploaded bytes into date-partitioned directories.
type Files interface {
	PlaylistImageDir() (string, error)
	Save(dir, filename string, data []byte) (string, error)
}

// Processor transforms uploaded cover bytes.
type Processor interface {
	ResizeImage(src []byte, width, height int) ([]byte, error)
}

// CreateInput carries a new playlist submission.
type CreateInput struct {
	Title     string
	Cover     []byte
	CoverName string
}

// UpdateInput carries a partial playlist update. A non-empty Cover
// replaces both variant images in place.
type UpdateInput struct {
	Title     *string
	Cover     []byte
	CoverName string
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[Playlist], error)
	Get(ctx context.Context, id int64) (Playlist, error)
	Tracks(ctx context.Context, playlistID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	Create(ctx context.Context, author models.User, in CreateInput) (Playlist, error)
	Update(ctx context.Context, author models.User, id int64, in UpdateInput) (Playlist, error)
	Delete(ctx context.Context, author models.User, id int64) error
	AddTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (Playlist, error)
	RemoveTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (Playlist, error)
}

type service struct {
	store Store
	files Files
	proc  Processor
	base  *url.URL
}

// New constructs a Service. base is the public URL the API is served
// under; embedded track page links are built against it.
func New(st Store, files Files, proc Processor, base *url.URL) Service {
	return &service{store: st, files: files, proc: proc, base: base}
}

func (s *service) List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[Playlist], error) {
	playlists, err := s.store.ListPlaylists(ctx, store.PlaylistFilter{})
	if err != nil {
		return page.Page[Playlist]{}, err
	}

	wrapped := make([]Playlist, 0, len(playlists))
	for _, playlist := range playlists {
		wrapped = append(wrapped, Wrap(playlist, s.base))
	}
	return page.Paginate(wrapped, offset, limit, u), nil
}

func (s *service) Get(ctx context.Context, id int64) (Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return Wrap(playlist, s.base), nil
}

func (s *service) Tracks(ctx context.Context, playlistID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error) {
	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return page.Page[models.Track]{}, err
	}
	return page.Paginate(playlist.Tracks, offset, limit, u), nil
}

func (s *service) Create(ctx context.Context, author models.User, in CreateInput) (Playlist, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Playlist{}, ErrTitleRequired
	}
	if len(in.Cover) == 0 {
		return Playlist{}, ErrCoverRequired
	}

	small, normal, err := s.saveCoverVariants(in.Cover, in.CoverName)
	if err != nil {
		return Playlist{}, err
	}

	playlist := models.Playlist{
		Title:   strings.TrimSpace(in.Title),
		Author:  &author,
		Artists: []models.User{},
		Tracks:  []models.Track{},
	}
	if err := s.store.CreatePlaylist(ctx, &playlist, small, normal); err != nil {
		return Playlist{}, err
	}
	return Wrap(playlist, s.base), nil
}

func (s *service) Update(ctx context.Context, author models.User, id int64, in UpdateInput) (Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	if playlist.Author.ID != author.ID {
		return Playlist{}, ErrNotOwner
	}

	if in.Title != nil {
		if err := s.store.UpdatePlaylist(ctx, id, store.PlaylistUpdate{Title: in.Title}); err != nil {
			return Playlist{}, err
		}
	}
	if len(in.Cover) > 0 {
		small, normal, err := s.saveCoverVariants(in.Cover, in.CoverName)
		if err != nil {
			return Playlist{}, err
		}
		if err := s.store.UpdatePlaylistImages(ctx, id, small.URL, normal.URL); err != nil {
			return Playlist{}, err
		}
	}

	updated, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return Wrap(updated, s.base), nil
}

func (s *service) Delete(ctx context.Context, author models.User, id int64) error {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}
	if playlist.Author.ID != author.ID {
		return ErrNotOwner
	}
	return s.store.DeletePlaylist(ctx, id)
}

// AddTracks appends tracks to the playlist. Membership is a set: ids
// already in the playlist (or repeated in the request) are skipped and
// never counted into the duration twice. Artists of added tracks join
// the roster once each.
func (s *service) AddTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	if playlist.Author.ID != author.ID {
		return Playlist{}, ErrNotOwner
	}

	members := make(map[int64]bool, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		members[track.ID] = true
	}
	artists := make(map[int64]bool, len(playlist.Artists))
	for _, artist := range playlist.Artists {
		artists[artist.ID] = true
	}

	var (
		newTracks  []int64
		newArtists []int64
		durationMS = playlist.DurationMS
	)
	for _, trackID := range trackIDs {
		// Every requested id must exist, member or not.
		track, err := s.store.GetTrack(ctx, trackID)
		if err != nil {
			return Playlist{}, err
		}
		if members[track.ID] {
			continue
		}
		members[track.ID] = true
		newTracks = append(newTracks, track.ID)
		durationMS += track.DurationMS
		if !artists[track.Artist.ID] {
			artists[track.Artist.ID] = true
			newArtists = append(newArtists, track.Artist.ID)
		}
	}

	if len(newTracks) > 0 {
		if err := s.store.AddPlaylistTracks(ctx, id, newTracks, newArtists, durationMS); err != nil {
			return Playlist{}, err
		}
	}

	updated, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return Wrap(updated, s.base), nil
}

// RemoveTracks drops the given tracks from the playlist. Ids that are
// not members are ignored. The duration shrinks by the removed tracks
// and the artist roster is recomputed from the remaining members.
func (s *service) RemoveTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	if playlist.Author.ID != author.ID {
		return Playlist{}, ErrNotOwner
	}

	remove := make(map[int64]bool, len(trackIDs))
	for _, trackID := range trackIDs {
		remove[trackID] = true
	}

	var (
		removed     []int64
		durationMS  int64
		keepArtists []int64
		seenArtists = make(map[int64]bool)
	)
	for _, track := range playlist.Tracks {
		if remove[track.ID] {
			removed = append(removed, track.ID)
			continue
		}
		durationMS += track.DurationMS
		if !seenArtists[track.Artist.ID] {
			seenArtists[track.Artist.ID] = true
			keepArtists = append(keepArtists, track.Artist.ID)
		}
	}

	if len(removed) > 0 {
		if err := s.store.RemovePlaylistTracks(ctx, id, removed, keepArtists, durationMS); err != nil {
			return Playlist{}, err
		}
	}

	updated, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return Wrap(updated, s.base), nil
}

func (s *service) saveCoverVariants(cover []byte, coverName string) (small, normal models.Image, err error) {
	dir, err := s.files.PlaylistImageDir()
	if err != nil {
		return models.Image{}, models.Image{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(coverName), filepath.Ext(coverName))
	if stem == "" || stem == "." {
		stem = "cover"
	}

	for _, v := range []struct {
		img  *models.Image
		size string
		px   int
	}{
		{&small, models.ImageSizeSmall, media.SmallImageSize},
		{&normal, models.ImageSizeNormal, media.NormalImageSize},
	} {
		resized, err := s.proc.ResizeImage(cover, v.px, v.px)
		if err != nil {
			return models.Image{}, models.Image{}, fmt.Errorf("resize cover: %w", err)
		}
		path, err := s.files.Save(dir, fmt.Sprintf("%s_%s.jpg", stem, v.size), resized)
		if err != nil {
			return models.Image{}, models.Image{}, err
		}
		*v.img = models.Image{URL: path, Size: v.size}
	}
	return small, normal, nil
}

// Wrap attaches the first track page to a playlist for API responses
// and caps the artist roster.
func Wrap(playlist models.Playlist, base *url.URL) Playlist {
	if len(playlist.Artists) > maxArtists {
		playlist.Artists = playlist.Artists[:maxArtists]
	}
	u := trackPageURL(base, playlist.ID)
	return Playlist{Playlist: playlist, Tracks: page.Paginate(playlist.Tracks, 0, trackPageLimit, u)}
}

func trackPageURL(base *url.URL, playlistID int64) *url.URL {
	u := base.JoinPath("api", "v1", "playlists", strconv.FormatInt(playlistID, 10), "tracks")
	q := url.Values{}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(trackPageLimit))
	u.RawQuery = q.Encode()
	return u
}
