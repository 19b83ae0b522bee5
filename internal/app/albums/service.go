// Package albums implements album workflows: listing and fetching
// albums with their first track page, creating and updating albums with
// cover variants, and managing the tracks of an album.
package albums

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
	ErrNotOwner         = errors.New("album does not belong to the authenticated user")
	ErrCoverRequired    = errors.New("cover image is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidAlbumType = errors.New("album type must be album or single")
	ErrSingleTrackLimit = errors.New("a single cannot hold more than one track")
)

// Each embedded track page starts at the first page of this size.
const trackPageLimit = 15

// Album is the API shape of an album: the entity plus the first page of
// its tracks.
type Album struct {
	models.Album
	Tracks page.Page[models.Track] `json:"tracks"`
}

// Store captures the persistence needs for album workflows.
type Store interface {
	ListAlbums(ctx context.Context, filter store.AlbumFilter) ([]models.Album, error)
	GetAlbum(ctx context.Context, id int64) (models.Album, error)
	CreateAlbum(ctx context.Context, album *models.Album, small, normal models.Image) error
	UpdateAlbum(ctx context.Context, id int64, upd store.AlbumUpdate) error
	UpdateAlbumImages(ctx context.Context, albumID int64, smallURL, normalURL string) error
	DeleteAlbum(ctx context.Context, id int64) error
	GetGenre(ctx context.Context, id int64) (models.Genre, error)
	GetTrack(ctx context.Context, id int64) (models.Track, error)
	AddAlbumTrack(ctx context.Context, track *models.Track) error
	UpdateAlbumTrack(ctx context.Context, trackID, albumID int64, upd store.TrackUpdate, durationDelta int64) error
	DeleteTrack(ctx context.Context, trackID int64) error
}

// Files writes uploaded bytes into date-partitioned directories.
type Files interface {
	AlbumImageDir() (string, error)
	TrackAudioDir() (string, error)
	Save(dir, filename string, data []byte) (string, error)
}

// Processor transforms uploaded media bytes.
type Processor interface {
	ResizeImage(src []byte, width, height int) ([]byte, error)
	Duration(data []byte) (int64, error)
	TagTitle(data []byte) string
	CheckAudioFilename(filename string) error
}

// CreateInput carries a new album submission.
type CreateInput struct {
	Title     string
	AlbumType string
	GenreID   int64
	Cover     []byte
	CoverName string
}

// UpdateInput carries a partial album update. Nil fields are left
// untouched; a non-empty Cover replaces both variant images in place.
type UpdateInput struct {
	Title     *string
	AlbumType *string
	GenreID   *int64
	Cover     []byte
	CoverName string
}

// UploadTrackInput carries a new track submission for an album.
type UploadTrackInput struct {
	Title    string
	Explicit bool
	Text     *string
	Number   int
	Audio    []byte
	Filename string
}

// UpdateTrackInput carries a partial track update. A non-empty Audio
// replaces the stored file and re-derives the duration.
type UpdateTrackInput struct {
	Title      *string
	IsPlayable *bool
	Explicit   *bool
	Text       *string
	Number     *int
	Audio      []byte
	Filename   string
}

// Service coordinates album-related operations.
type Service interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[Album], error)
	Get(ctx context.Context, id int64) (Album, error)
	Create(ctx context.Context, artist models.User, in CreateInput) (Album, error)
	Update(ctx context.Context, artist models.User, id int64, in UpdateInput) (Album, error)
	Delete(ctx context.Context, artist models.User, id int64) error

	Tracks(ctx context.Context, albumID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	UploadTrack(ctx context.Context, artist models.User, albumID int64, in UploadTrackInput) (models.Track, error)
	UpdateTrack(ctx context.Context, artist models.User, albumID, trackID int64, in UpdateTrackInput) (models.Track, error)
	DeleteTrack(ctx context.Context, artist models.User, albumID, trackID int64) error
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

func (s *service) List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[Album], error) {
	albums, err := s.store.ListAlbums(ctx, store.AlbumFilter{})
	if err != nil {
		return page.Page[Album]{}, err
	}

	wrapped := make([]Album, 0, len(albums))
	for _, album := range albums {
		wrapped = append(wrapped, Wrap(album, s.base))
	}
	return page.Paginate(wrapped, offset, limit, u), nil
}

func (s *service) Get(ctx context.Context, id int64) (Album, error) {
	album, err := s.store.GetAlbum(ctx, id)
	if err != nil {
		return Album{}, err
	}
	return Wrap(album, s.base), nil
}

func (s *service) Create(ctx context.Context, artist models.User, in CreateInput) (Album, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Album{}, ErrTitleRequired
	}
	if in.AlbumType != models.AlbumTypeAlbum && in.AlbumType != models.AlbumTypeSingle {
		return Album{}, ErrInvalidAlbumType
	}
	if len(in.Cover) == 0 {
		return Album{}, ErrCoverRequired
	}

	genre, err := s.store.GetGenre(ctx, in.GenreID)
	if err != nil {
		return Album{}, err
	}

	small, normal, err := s.saveCoverVariants(s.files.AlbumImageDir, in.Cover, in.CoverName)
	if err != nil {
		return Album{}, err
	}

	album := models.Album{
		Title:     strings.TrimSpace(in.Title),
		AlbumType: in.AlbumType,
		Artist:    &artist,
		Genre:     &genre,
	}
	if err := s.store.CreateAlbum(ctx, &album, small, normal); err != nil {
		return Album{}, err
	}
	return Wrap(album, s.base), nil
}

func (s *service) Update(ctx context.Context, artist models.User, id int64, in UpdateInput) (Album, error) {
	album, err := s.store.GetAlbum(ctx, id)
	if err != nil {
		return Album{}, err
	}
	if album.Artist.ID != artist.ID {
		return Album{}, ErrNotOwner
	}

	if in.AlbumType != nil && *in.AlbumType != models.AlbumTypeAlbum && *in.AlbumType != models.AlbumTypeSingle {
		return Album{}, ErrInvalidAlbumType
	}
	if in.GenreID != nil {
		if _, err := s.store.GetGenre(ctx, *in.GenreID); err != nil {
			return Album{}, err
		}
	}

	upd := store.AlbumUpdate{Title: in.Title, AlbumType: in.AlbumType, GenreID: in.GenreID}
	if err := s.store.UpdateAlbum(ctx, id, upd); err != nil {
		return Album{}, err
	}

	if len(in.Cover) > 0 {
		small, normal, err := s.saveCoverVariants(s.files.AlbumImageDir, in.Cover, in.CoverName)
		if err != nil {
			return Album{}, err
		}
		if err := s.store.UpdateAlbumImages(ctx, id, small.URL, normal.URL); err != nil {
			return Album{}, err
		}
	}

	updated, err := s.store.GetAlbum(ctx, id)
	if err != nil {
		return Album{}, err
	}
	return Wrap(updated, s.base), nil
}

func (s *service) Delete(ctx context.Context, artist models.User, id int64) error {
	album, err := s.store.GetAlbum(ctx, id)
	if err != nil {
		return err
	}
	if album.Artist.ID != artist.ID {
		return ErrNotOwner
	}
	return s.store.DeleteAlbum(ctx, id)
}

func (s *service) Tracks(ctx context.Context, albumID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error) {
	album, err := s.store.GetAlbum(ctx, albumID)
	if err != nil {
		return page.Page[models.Track]{}, err
	}
	return page.Paginate(album.Tracks, offset, limit, u), nil
}

func (s *service) UploadTrack(ctx context.Context, artist models.User, albumID int64, in UploadTrackInput) (models.Track, error) {
	if err := s.proc.CheckAudioFilename(in.Filename); err != nil {
		return models.Track{}, err
	}

	album, err := s.store.GetAlbum(ctx, albumID)
	if err != nil {
		return models.Track{}, err
	}
	if album.Artist.ID != artist.ID {
		return models.Track{}, ErrNotOwner
	}
	if album.AlbumType == models.AlbumTypeSingle && len(album.Tracks) >= 1 {
		return models.Track{}, ErrSingleTrackLimit
	}

	// The stored duration always comes from the decoded file, never
	// from the client.
	durationMS, err := s.proc.Duration(in.Audio)
	if err != nil {
		return models.Track{}, err
	}

	dir, err := s.files.TrackAudioDir()
	if err != nil {
		return models.Track{}, err
	}
	path, err := s.files.Save(dir, in.Filename, in.Audio)
	if err != nil {
		return models.Track{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = s.proc.TagTitle(in.Audio)
	}
	if title == "" {
		title = strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename))
	}
	number := in.Number
	if number < 1 {
		number = 1
	}

	track := models.Track{
		Title:      title,
		File:       path,
		IsPlayable: true,
		Explicit:   in.Explicit,
		Text:       in.Text,
		DurationMS: durationMS,
		Number:     number,
		Artist:     &artist,
		Album:      &album,
	}
	if err := s.store.AddAlbumTrack(ctx, &track); err != nil {
		return models.Track{}, err
	}
	return track, nil
}

func (s *service) UpdateTrack(ctx context.Context, artist models.User, albumID, trackID int64, in UpdateTrackInput) (models.Track, error) {
	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return models.Track{}, err
	}
	if track.Album == nil || track.Album.ID != albumID {
		return models.Track{}, store.ErrTrackNotFound
	}
	if track.Artist.ID != artist.ID {
		return models.Track{}, ErrNotOwner
	}

	upd := store.TrackUpdate{
		Title:      in.Title,
		IsPlayable: in.IsPlayable,
		Explicit:   in.Explicit,
		Text:       in.Text,
		Number:     in.Number,
	}

	var durationDelta int64
	if len(in.Audio) > 0 {
		if err := s.proc.CheckAudioFilename(in.Filename); err != nil {
			return models.Track{}, err
		}
		durationMS, err := s.proc.Duration(in.Audio)
		if err != nil {
			return models.Track{}, err
		}
		dir, err := s.files.TrackAudioDir()
		if err != nil {
			return models.Track{}, err
		}
		path, err := s.files.Save(dir, in.Filename, in.Audio)
		if err != nil {
			return models.Track{}, err
		}
		upd.File = &path
		upd.DurationMS = &durationMS
		durationDelta = durationMS - track.DurationMS
	}

	if err := s.store.UpdateAlbumTrack(ctx, trackID, albumID, upd, durationDelta); err != nil {
		return models.Track{}, err
	}
	return s.store.GetTrack(ctx, trackID)
}

func (s *service) DeleteTrack(ctx context.Context, artist models.User, albumID, trackID int64) error {
	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return err
	}
	if track.Album == nil || track.Album.ID != albumID {
		return store.ErrTrackNotFound
	}
	if track.Artist.ID != artist.ID {
		return ErrNotOwner
	}
	return s.store.DeleteTrack(ctx, trackID)
}

// saveCoverVariants resizes a raw cover into the small and normal
// variants and writes both next to each other, returning the image rows
// to persist.
func (s *service) saveCoverVariants(dirFn func() (string, error), cover []byte, coverName string) (small, normal models.Image, err error) {
	dir, err := dirFn()
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

// Wrap attaches the first track page to an album for API responses.
func Wrap(album models.Album, base *url.URL) Album {
	u := trackPageURL(base, album.ID)
	return Album{Album: album, Tracks: page.Paginate(album.Tracks, 0, trackPageLimit, u)}
}

func trackPageURL(base *url.URL, albumID int64) *url.URL {
	u := base.JoinPath("api", "v1", "albums", strconv.FormatInt(albumID, 10), "tracks")
	q := url.Values{}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(trackPageLimit))
	u.RawQuery = q.Encode()
	return u
}
