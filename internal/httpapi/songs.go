package httpapi

import (
	"net/http"
	"strconv"

	"mymusicopinion/internal/store"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.SongFilter{
		Title:        query.Get("title"),
		Artist:       query.Get("artist"),
		Genre:        query.Get("genre"),
		OnlyReviewed: query.Get("reviewed") == "true",
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid offset parameter"})
			return
		}
		filter.Offset = offset
	}

	songs, err := s.songs.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleArtistTopTracks(w http.ResponseWriter, r *http.Request) {
	artist := r.PathValue("artist")
	if artist == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "artist is required"})
		return
	}

	songs, err := s.songs.TopByArtist(r.Context(), artist)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleSongStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	status, err := s.reactions.SongStatus(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSongLike(w http.ResponseWriter, r *http.Request) {
	s.handleLikeToggle(w, r, store.TargetSong)
}

func (s *Server) handleReviewLike(w http.ResponseWriter, r *http.Request) {
	s.handleLikeToggle(w, r, store.TargetReview)
}

func (s *Server) handlePostLike(w http.ResponseWriter, r *http.Request) {
	s.handleLikeToggle(w, r, store.TargetPost)
}

func (s *Server) handleCommentLike(w http.ResponseWriter, r *http.Request) {
	s.handleLikeToggle(w, r, store.TargetComment)
}

// handleLikeToggle flips the caller's like on the addressed target and
// reports the resulting state.
func (s *Server) handleLikeToggle(w http.ResponseWriter, r *http.Request, kind store.TargetKind) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	liked, err := s.reactions.ToggleLike(r.Context(), userID, kind, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: liked})
}

func (s *Server) handleSongFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	favorited, err := s.reactions.ToggleFavorite(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: favorited})
}
