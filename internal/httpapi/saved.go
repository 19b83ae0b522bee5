package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
)

type saveRequest struct {
	ID int64 `json:"id"`
}

func (s *Server) handleSavedTracks(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, limit, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.saved.Tracks(r.Context(), user.ID, r.URL, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSavedAlbums(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, limit, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.saved.Albums(r.Context(), user.ID, r.URL, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSavedPlaylists(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, limit, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.saved.Playlists(r.Context(), user.ID, r.URL, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveTrack(w http.ResponseWriter, r *http.Request) {
	s.handleSave(w, r, s.saved.SaveTrack)
}

func (s *Server) handleSaveAlbum(w http.ResponseWriter, r *http.Request) {
	s.handleSave(w, r, s.saved.SaveAlbum)
}

func (s *Server) handleSavePlaylist(w http.ResponseWriter, r *http.Request) {
	s.handleSave(w, r, s.saved.SavePlaylist)
}

func (s *Server) handleUnsaveTrack(w http.ResponseWriter, r *http.Request) {
	s.handleUnsave(w, r, s.saved.UnsaveTrack)
}

func (s *Server) handleUnsaveAlbum(w http.ResponseWriter, r *http.Request) {
	s.handleUnsave(w, r, s.saved.UnsaveAlbum)
}

func (s *Server) handleUnsavePlaylist(w http.ResponseWriter, r *http.Request) {
	s.handleUnsave(w, r, s.saved.UnsavePlaylist)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, save func(ctx context.Context, userID, targetID int64) error) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := save(r.Context(), user.ID, req.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnsave(w http.ResponseWriter, r *http.Request, unsave func(ctx context.Context, userID, targetID int64) error) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	if err := unsave(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
