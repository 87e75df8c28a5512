package httpapi

import (
	"errors"
	"net/http"

	"mymusicopinion/internal/app/search"
	"mymusicopinion/internal/musicapi"
)

func (s *Server) handleMusicSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	term := query.Get("term")
	if term == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "term parameter is required"})
		return
	}

	var kind musicapi.SearchType
	switch query.Get("type") {
	case "", "any":
		kind = musicapi.SearchAny
	case "song":
		kind = musicapi.SearchSong
	case "artist":
		kind = musicapi.SearchArtist
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be any, song or artist"})
		return
	}

	results, err := s.search.Search(r.Context(), term, kind)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Results []search.Result `json:"results"`
	}{Results: results})
}

func (s *Server) handleYouTubeVideo(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "term parameter is required"})
		return
	}

	videoID, err := s.search.VideoID(r.Context(), term)
	if err != nil {
		if errors.Is(err, musicapi.ErrVideoNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no video found"})
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		VideoID string `json:"videoId"`
	}{VideoID: videoID})
}

func (s *Server) handleArtistAlbums(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	if artist == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "artist parameter is required"})
		return
	}

	albums, err := s.search.ArtistAlbums(r.Context(), artist)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Albums []musicapi.Album `json:"albums"`
	}{Albums: albums})
}
