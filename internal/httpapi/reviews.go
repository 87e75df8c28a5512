package httpapi

import (
	"encoding/json"
	"net/http"

	"mymusicopinion/internal/store"
)

type reviewRequest struct {
	Song    store.SongRef `json:"song"`
	Rating  int           `json:"rating"`
	Comment string        `json:"comment"`
}

type reviewUpdateRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Song.ItunesTrackID == 0 || req.Song.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "song reference with track id and title is required"})
		return
	}

	review, err := s.reviews.Create(r.Context(), userID, req.Song, req.Rating, req.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid review id"})
		return
	}

	var req reviewUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	review, err := s.reviews.Update(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid review id"})
		return
	}

	if err := s.reviews.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSongReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	reviews, err := s.reviews.ListBySong(r.Context(), id, r.URL.Query().Get("sort"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Reviews []store.Review `json:"reviews"`
	}{Reviews: reviews})
}
