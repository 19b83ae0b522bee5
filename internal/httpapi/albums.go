package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"soundcrate/internal/app/albums"
)

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.albums.List(r.Context(), r.URL, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	album, err := s.albums.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	genreID, err := strconv.ParseInt(r.FormValue("genre_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid genre_id"})
		return
	}

	cover, coverName, err := formFile(r, "cover")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cover upload"})
		return
	}

	album, err := s.albums.Create(r.Context(), user, albums.CreateInput{
		Title:     r.FormValue("title"),
		AlbumType: r.FormValue("album_type"),
		GenreID:   genreID,
		Cover:     cover,
		CoverName: coverName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	in := albums.UpdateInput{
		Title:     formString(r, "title"),
		AlbumType: formString(r, "album_type"),
	}
	if raw := r.FormValue("genre_id"); raw != "" {
		genreID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid genre_id"})
			return
		}
		in.GenreID = &genreID
	}
	cover, coverName, err := formFile(r, "cover")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cover upload"})
		return
	}
	in.Cover = cover
	in.CoverName = coverName

	album, err := s.albums.Update(r.Context(), user, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	if err := s.albums.Delete(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlbumTracks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	offset, limit, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.albums.Tracks(r.Context(), id, r.URL, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUploadTrack(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	albumID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	audio, filename, err := formFile(r, "audio")
	if err != nil || len(audio) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return
	}

	in := albums.UploadTrackInput{
		Title:    r.FormValue("title"),
		Explicit: r.FormValue("explicit") == "true",
		Text:     formString(r, "text"),
		Audio:    audio,
		Filename: filename,
	}
	if raw := r.FormValue("number"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track number"})
			return
		}
		in.Number = number
	}

	track, err := s.albums.UploadTrack(r.Context(), user, albumID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

func (s *Server) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	albumID, err := pathID(r, "albumID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}
	trackID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	in := albums.UpdateTrackInput{
		Title: formString(r, "title"),
		Text:  formString(r, "text"),
	}
	if raw := r.FormValue("is_playable"); raw != "" {
		playable := raw == "true"
		in.IsPlayable = &playable
	}
	if raw := r.FormValue("explicit"); raw != "" {
		explicit := raw == "true"
		in.Explicit = &explicit
	}
	if raw := r.FormValue("number"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track number"})
			return
		}
		in.Number = &number
	}
	audio, filename, err := formFile(r, "audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid audio upload"})
		return
	}
	in.Audio = audio
	in.Filename = filename

	track, err := s.albums.UpdateTrack(r.Context(), user, albumID, trackID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	albumID, err := pathID(r, "albumID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}
	trackID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	if err := s.albums.DeleteTrack(r.Context(), user, albumID, trackID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formFile reads an optional uploaded file. A missing field returns nil
// bytes without an error.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// formString returns a pointer to the field's value, or nil when the
// field was not sent at all.
func formString(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
