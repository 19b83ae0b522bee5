package main

import (
	"net/http"

	"soundcrate/internal/app/albums"
	"soundcrate/internal/app/genres"
	"soundcrate/internal/app/playlists"
	"soundcrate/internal/app/saved"
	"soundcrate/internal/app/tracks"
	"soundcrate/internal/app/users"
	"soundcrate/internal/auth"
	"soundcrate/internal/httpapi"
	"soundcrate/internal/media"
	"soundcrate/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	files := media.NewStorage(cfg.MediaDir)
	proc := media.Processor{}

	userSvc := users.New(dataStore, tokens, files, proc)
	genreSvc := genres.New(dataStore)
	albumSvc := albums.New(dataStore, files, proc, cfg.PublicBaseURL)
	trackSvc := tracks.New(dataStore)
	playlistSvc := playlists.New(dataStore, files, proc, cfg.PublicBaseURL)
	savedSvc := saved.New(dataStore, cfg.PublicBaseURL)

	handler := httpapi.New(userSvc, genreSvc, albumSvc, trackSvc, playlistSvc, savedSvc).Routes()

	handler = httpapi.CORS(cfg.AllowedOrigins)(handler)
	handler = httpapi.RequestLogging()(handler)
	handler = httpapi.Recovery()(handler)
	return handler
}
