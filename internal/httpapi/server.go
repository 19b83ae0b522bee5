// Package httpapi wires the catalog services to HTTP: routing, request
// decoding, pagination parameters, auth and error-to-status mapping.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"soundcrate/internal/app/albums"
	"soundcrate/internal/app/genres"
	"soundcrate/internal/app/playlists"
	"soundcrate/internal/app/users"
	"soundcrate/internal/media"
	"soundcrate/internal/models"
	"soundcrate/internal/page"
	"soundcrate/internal/store"
)

// Pagination query parameter bounds.
const (
	defaultLimit = 15
	maxLimit     = 50
	maxOffset    = 100000
)

// Uploads above this size are rejected while parsing the form.
const maxUploadBytes = 64 << 20

// UserService exposes account workflows.
type UserService interface {
	Signup(ctx context.Context, username, password, about string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	ByToken(ctx context.Context, token string) (models.User, error)
	Update(ctx context.Context, user models.User, in users.UpdateInput) (models.User, error)
}

// GenreService exposes genre management.
type GenreService interface {
	List(ctx context.Context) ([]models.Genre, error)
	Get(ctx context.Context, id int64) (models.Genre, error)
	Create(ctx context.Context, title string) (models.Genre, error)
	Update(ctx context.Context, id int64, title string) (models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

// AlbumService exposes album and album-track workflows.
type AlbumService interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[albums.Album], error)
	Get(ctx context.Context, id int64) (albums.Album, error)
	Create(ctx context.Context, artist models.User, in albums.CreateInput) (albums.Album, error)
	Update(ctx context.Context, artist models.User, id int64, in albums.UpdateInput) (albums.Album, error)
	Delete(ctx context.Context, artist models.User, id int64) error

	Tracks(ctx context.Context, albumID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	UploadTrack(ctx context.Context, artist models.User, albumID int64, in albums.UploadTrackInput) (models.Track, error)
	UpdateTrack(ctx context.Context, artist models.User, albumID, trackID int64, in albums.UpdateTrackInput) (models.Track, error)
	DeleteTrack(ctx context.Context, artist models.User, albumID, trackID int64) error
}

// TrackService exposes catalog-wide track reads.
type TrackService interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	Get(ctx context.Context, id int64) (models.Track, error)
}

// PlaylistService exposes playlist workflows.
type PlaylistService interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[playlists.Playlist], error)
	Get(ctx context.Context, id int64) (playlists.Playlist, error)
	Tracks(ctx context.Context, playlistID int64, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	Create(ctx context.Context, author models.User, in playlists.CreateInput) (playlists.Playlist, error)
	Update(ctx context.Context, author models.User, id int64, in playlists.UpdateInput) (playlists.Playlist, error)
	Delete(ctx context.Context, author models.User, id int64) error
	AddTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (playlists.Playlist, error)
	RemoveTracks(ctx context.Context, author models.User, id int64, trackIDs []int64) (playlists.Playlist, error)
}

// SavedService exposes the user library.
type SavedService interface {
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

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	genres    GenreService
	albums    AlbumService
	tracks    TrackService
	playlists PlaylistService
	saved     SavedService
}

// New configures a Server with the given services.
func New(
	users UserService,
	genres GenreService,
	albums AlbumService,
	tracks TrackService,
	playlists PlaylistService,
	saved SavedService,
) *Server {
	return &Server{
		users:     users,
		genres:    genres,
		albums:    albums,
		tracks:    tracks,
		playlists: playlists,
		saved:     saved,
	}
}

// Routes exposes the HTTP handlers for the catalog API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/genres", s.handleListGenres)
	mux.HandleFunc("POST /api/v1/genres", s.handleCreateGenre)
	mux.HandleFunc("GET /api/v1/genres/{id}", s.handleGetGenre)
	mux.HandleFunc("PUT /api/v1/genres/{id}", s.handleUpdateGenre)
	mux.HandleFunc("DELETE /api/v1/genres/{id}", s.handleDeleteGenre)

	mux.HandleFunc("GET /api/v1/albums", s.handleListAlbums)
	mux.HandleFunc("POST /api/v1/albums", s.handleCreateAlbum)
	mux.HandleFunc("GET /api/v1/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("PATCH /api/v1/albums/{id}", s.handleUpdateAlbum)
	mux.HandleFunc("DELETE /api/v1/albums/{id}", s.handleDeleteAlbum)

	mux.HandleFunc("GET /api/v1/albums/{id}/tracks", s.handleListAlbumTracks)
	mux.HandleFunc("POST /api/v1/albums/{id}/tracks", s.handleUploadTrack)
	mux.HandleFunc("PATCH /api/v1/albums/{albumID}/tracks/{id}", s.handleUpdateTrack)
	mux.HandleFunc("DELETE /api/v1/albums/{albumID}/tracks/{id}", s.handleDeleteTrack)

	mux.HandleFunc("GET /api/v1/tracks", s.handleListTracks)
	mux.HandleFunc("GET /api/v1/tracks/{id}", s.handleGetTrack)

	mux.HandleFunc("GET /api/v1/playlists", s.handleListPlaylists)
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", s.handleUpdatePlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("GET /api/v1/playlists/{id}/tracks", s.handleListPlaylistTracks)
	mux.HandleFunc("PUT /api/v1/playlists/{id}/tracks", s.handleAddPlaylistTracks)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/tracks", s.handleRemovePlaylistTracks)

	mux.HandleFunc("GET /api/v1/users/me", s.handleCurrentUser)
	mux.HandleFunc("PATCH /api/v1/users/me", s.handleUpdateCurrentUser)

	mux.HandleFunc("GET /api/v1/users/me/saved/tracks", s.handleSavedTracks)
	mux.HandleFunc("PUT /api/v1/users/me/saved/tracks", s.handleSaveTrack)
	mux.HandleFunc("DELETE /api/v1/users/me/saved/tracks/{id}", s.handleUnsaveTrack)
	mux.HandleFunc("GET /api/v1/users/me/saved/albums", s.handleSavedAlbums)
	mux.HandleFunc("PUT /api/v1/users/me/saved/albums", s.handleSaveAlbum)
	mux.HandleFunc("DELETE /api/v1/users/me/saved/albums/{id}", s.handleUnsaveAlbum)
	mux.HandleFunc("GET /api/v1/users/me/saved/playlists", s.handleSavedPlaylists)
	mux.HandleFunc("PUT /api/v1/users/me/saved/playlists", s.handleSavePlaylist)
	mux.HandleFunc("DELETE /api/v1/users/me/saved/playlists/{id}", s.handleUnsavePlaylist)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// currentUser resolves the authenticated user from the bearer token.
func (s *Server) currentUser(r *http.Request) (models.User, error) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return models.User{}, users.ErrUnauthorized
	}
	return s.users.ByToken(r.Context(), token)
}

// pageParams parses the offset and limit query parameters, applying the
// defaults and rejecting out-of-range values.
func pageParams(r *http.Request) (offset, limit int, err error) {
	offset, err = boundedInt(r.URL.Query().Get("offset"), 0, 0, maxOffset)
	if err != nil {
		return 0, 0, errors.New("offset must be an integer between 0 and 100000")
	}
	limit, err = boundedInt(r.URL.Query().Get("limit"), defaultLimit, 0, maxLimit)
	if err != nil {
		return 0, 0, errors.New("limit must be an integer between 0 and 50")
	}
	return offset, limit, nil
}

func boundedInt(raw string, def, min, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, errors.New("out of range")
	}
	return n, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// writeError maps service and store errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, users.ErrUnauthorized),
		errors.Is(err, store.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, albums.ErrNotOwner),
		errors.Is(err, playlists.ErrNotOwner),
		errors.Is(err, albums.ErrSingleTrackLimit):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrGenreNotFound),
		errors.Is(err, store.ErrAlbumNotFound),
		errors.Is(err, store.ErrTrackNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, albums.ErrTitleRequired),
		errors.Is(err, albums.ErrCoverRequired),
		errors.Is(err, albums.ErrInvalidAlbumType),
		errors.Is(err, playlists.ErrTitleRequired),
		errors.Is(err, playlists.ErrCoverRequired),
		errors.Is(err, genres.ErrTitleRequired),
		errors.Is(err, users.ErrPasswordTooShort),
		errors.Is(err, media.ErrUnsupportedAudioFormat):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
