package albums

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"soundcrate/internal/models"
	"soundcrate/internal/store"
)

type fakeStore struct {
	album    models.Album
	albumErr error
	genre    models.Genre
	genreErr error
	track    models.Track
	trackErr error

	createdAlbum  *models.Album
	createdSmall  models.Image
	createdNormal models.Image
	addedTrack    *models.Track
	trackUpd      store.TrackUpdate
	durationDelta int64
	deletedTrack  int64
	deletedAlbum  int64
	albumUpd      store.AlbumUpdate
	imageURLs     [2]string
}

func (f *fakeStore) ListAlbums(ctx context.Context, filter store.AlbumFilter) ([]models.Album, error) {
	if f.albumErr != nil {
		return nil, f.albumErr
	}
	return []models.Album{f.album}, nil
}

func (f *fakeStore) GetAlbum(ctx context.Context, id int64) (models.Album, error) {
	return f.album, f.albumErr
}

func (f *fakeStore) CreateAlbum(ctx context.Context, album *models.Album, small, normal models.Image) error {
	album.ID = 7
	f.createdAlbum = album
	f.createdSmall = small
	f.createdNormal = normal
	return nil
}

func (f *fakeStore) UpdateAlbum(ctx context.Context, id int64, upd store.AlbumUpdate) error {
	f.albumUpd = upd
	return nil
}

func (f *fakeStore) UpdateAlbumImages(ctx context.Context, albumID int64, smallURL, normalURL string) error {
	f.imageURLs = [2]string{smallURL, normalURL}
	return nil
}

func (f *fakeStore) DeleteAlbum(ctx context.Context, id int64) error {
	f.deletedAlbum = id
	return nil
}

func (f *fakeStore) GetGenre(ctx context.Context, id int64) (models.Genre, error) {
	return f.genre, f.genreErr
}

func (f *fakeStore) GetTrack(ctx context.Context, id int64) (models.Track, error) {
	return f.track, f.trackErr
}

func (f *fakeStore) AddAlbumTrack(ctx context.Context, track *models.Track) error {
	track.ID = 99
	f.addedTrack = track
	return nil
}

func (f *fakeStore) UpdateAlbumTrack(ctx context.Context, trackID, albumID int64, upd store.TrackUpdate, durationDelta int64) error {
	f.trackUpd = upd
	f.durationDelta = durationDelta
	return nil
}

func (f *fakeStore) DeleteTrack(ctx context.Context, trackID int64) error {
	f.deletedTrack = trackID
	return nil
}

type fakeFiles struct {
	saved map[string][]byte
}

func (f *fakeFiles) AlbumImageDir() (string, error) { return "media/img/albums/01062024", nil }
func (f *fakeFiles) TrackAudioDir() (string, error) { return "media/audio/tracks/01062024", nil }

func (f *fakeFiles) Save(dir, filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	path := dir + "/" + filename
	f.saved[path] = data
	return path, nil
}

type fakeProc struct {
	durationMS  int64
	durationErr error
	tagTitle    string
	resized     [][2]int
}

func (f *fakeProc) ResizeImage(src []byte, width, height int) ([]byte, error) {
	f.resized = append(f.resized, [2]int{width, height})
	return []byte("jpeg"), nil
}

func (f *fakeProc) Duration(data []byte) (int64, error) { return f.durationMS, f.durationErr }
func (f *fakeProc) TagTitle(data []byte) string         { return f.tagTitle }

func (f *fakeProc) CheckAudioFilename(filename string) error {
	return nil
}

func base(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://api.test")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func artist(id int64) models.User {
	return models.User{ID: id, Username: "artist", IsActive: true}
}

func TestCreateResolvesGenreAndStoresVariants(t *testing.T) {
	st := &fakeStore{genre: models.Genre{ID: 3, Title: "Trip-Hop"}}
	proc := &fakeProc{}
	svc := New(st, &fakeFiles{}, proc, base(t))

	got, err := svc.Create(context.Background(), artist(42), CreateInput{
		Title:     "Mezzanine",
		AlbumType: models.AlbumTypeAlbum,
		GenreID:   3,
		Cover:     []byte("png"),
		CoverName: "cover.png",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(proc.resized) != 2 || proc.resized[0] != [2]int{100, 100} || proc.resized[1] != [2]int{450, 450} {
		t.Fatalf("resized variants = %v, want 100x100 then 450x450", proc.resized)
	}
	if st.createdSmall.URL != "media/img/albums/01062024/cover_small.jpg" {
		t.Fatalf("small URL = %q", st.createdSmall.URL)
	}
	if st.createdNormal.Size != models.ImageSizeNormal {
		t.Fatalf("normal size = %q", st.createdNormal.Size)
	}
	if got.Tracks.Total != 0 || got.Tracks.Limit != 15 {
		t.Fatalf("new album track page = %+v, want empty first page", got.Tracks)
	}
}

func TestCreateUnknownGenre(t *testing.T) {
	st := &fakeStore{genreErr: store.ErrGenreNotFound}
	svc := New(st, &fakeFiles{}, &fakeProc{}, base(t))

	_, err := svc.Create(context.Background(), artist(42), CreateInput{
		Title:     "Mezzanine",
		AlbumType: models.AlbumTypeAlbum,
		GenreID:   404,
		Cover:     []byte("png"),
		CoverName: "cover.png",
	})
	if !errors.Is(err, store.ErrGenreNotFound) {
		t.Fatalf("err = %v, want ErrGenreNotFound", err)
	}
}

func TestCreateRequiresCover(t *testing.T) {
	svc := New(&fakeStore{}, &fakeFiles{}, &fakeProc{}, base(t))

	_, err := svc.Create(context.Background(), artist(42), CreateInput{
		Title:     "Mezzanine",
		AlbumType: models.AlbumTypeAlbum,
		GenreID:   3,
	})
	if !errors.Is(err, ErrCoverRequired) {
		t.Fatalf("err = %v, want ErrCoverRequired", err)
	}
}

func TestUploadTrackDerivesDurationFromFile(t *testing.T) {
	st := &fakeStore{album: models.Album{
		ID:        7,
		AlbumType: models.AlbumTypeAlbum,
		Artist:    &models.User{ID: 42},
	}}
	proc := &fakeProc{durationMS: 183000}
	svc := New(st, &fakeFiles{}, proc, base(t))

	track, err := svc.UploadTrack(context.Background(), artist(42), 7, UploadTrackInput{
		Title:    "Teardrop",
		Audio:    []byte("mp3"),
		Filename: "teardrop.mp3",
	})
	if err != nil {
		t.Fatalf("UploadTrack: %v", err)
	}

	if track.DurationMS != 183000 {
		t.Fatalf("duration = %d, want the decoded 183000", track.DurationMS)
	}
	if !track.IsPlayable || track.Number != 1 {
		t.Fatalf("defaults not applied: playable=%v number=%d", track.IsPlayable, track.Number)
	}
	if st.addedTrack == nil || st.addedTrack.File != "media/audio/tracks/01062024/teardrop.mp3" {
		t.Fatalf("stored file = %+v", st.addedTrack)
	}
}

func TestUploadTrackTitleFallsBackToTags(t *testing.T) {
	st := &fakeStore{album: models.Album{
		ID:        7,
		AlbumType: models.AlbumTypeAlbum,
		Artist:    &models.User{ID: 42},
	}}
	proc := &fakeProc{durationMS: 1000, tagTitle: "Angel"}
	svc := New(st, &fakeFiles{}, proc, base(t))

	track, err := svc.UploadTrack(context.Background(), artist(42), 7, UploadTrackInput{
		Audio:    []byte("mp3"),
		Filename: "01.mp3",
	})
	if err != nil {
		t.Fatalf("UploadTrack: %v", err)
	}
	if track.Title != "Angel" {
		t.Fatalf("title = %q, want the tagged title", track.Title)
	}
}

func TestUploadTrackSingleLimit(t *testing.T) {
	st := &fakeStore{album: models.Album{
		ID:        7,
		AlbumType: models.AlbumTypeSingle,
		Artist:    &models.User{ID: 42},
		Tracks:    []models.Track{{ID: 1}},
	}}
	svc := New(st, &fakeFiles{}, &fakeProc{durationMS: 1000}, base(t))

	_, err := svc.UploadTrack(context.Background(), artist(42), 7, UploadTrackInput{
		Audio:    []byte("mp3"),
		Filename: "b-side.mp3",
	})
	if !errors.Is(err, ErrSingleTrackLimit) {
		t.Fatalf("err = %v, want ErrSingleTrackLimit", err)
	}
}

func TestUploadTrackNotOwner(t *testing.T) {
	st := &fakeStore{album: models.Album{
		ID:        7,
		AlbumType: models.AlbumTypeAlbum,
		Artist:    &models.User{ID: 42},
	}}
	svc := New(st, &fakeFiles{}, &fakeProc{durationMS: 1000}, base(t))

	_, err := svc.UploadTrack(context.Background(), artist(1), 7, UploadTrackInput{
		Audio:    []byte("mp3"),
		Filename: "x.mp3",
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestUpdateTrackNewFileAdjustsDuration(t *testing.T) {
	st := &fakeStore{
		album: models.Album{ID: 7, Artist: &models.User{ID: 42}},
		track: models.Track{
			ID:         99,
			DurationMS: 120000,
			Artist:     &models.User{ID: 42},
			Album:      &models.Album{ID: 7},
		},
	}
	svc := New(st, &fakeFiles{}, &fakeProc{durationMS: 150000}, base(t))

	_, err := svc.UpdateTrack(context.Background(), artist(42), 7, 99, UpdateTrackInput{
		Audio:    []byte("new"),
		Filename: "remaster.mp3",
	})
	if err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}

	if st.durationDelta != 30000 {
		t.Fatalf("duration delta = %d, want 30000", st.durationDelta)
	}
	if st.trackUpd.File == nil || st.trackUpd.DurationMS == nil || *st.trackUpd.DurationMS != 150000 {
		t.Fatalf("track update = %+v, want file and duration set", st.trackUpd)
	}
}

func TestUpdateTrackWrongAlbum(t *testing.T) {
	st := &fakeStore{track: models.Track{
		ID:     99,
		Artist: &models.User{ID: 42},
		Album:  &models.Album{ID: 8},
	}}
	svc := New(st, &fakeFiles{}, &fakeProc{}, base(t))

	_, err := svc.UpdateTrack(context.Background(), artist(42), 7, 99, UpdateTrackInput{})
	if !errors.Is(err, store.ErrTrackNotFound) {
		t.Fatalf("err = %v, want ErrTrackNotFound", err)
	}
}

func TestDeleteAlbumNotOwner(t *testing.T) {
	st := &fakeStore{album: models.Album{ID: 7, Artist: &models.User{ID: 42}}}
	svc := New(st, &fakeFiles{}, &fakeProc{}, base(t))

	if err := svc.Delete(context.Background(), artist(1), 7); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if st.deletedAlbum != 0 {
		t.Fatal("album was deleted despite failing the owner check")
	}
}
