package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mymusicopinion/internal/store"
)

type postRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category string         `json:"category"`
	Song     *store.SongRef `json:"song,omitempty"`
}

type postUpdateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title and content are required"})
		return
	}
	switch req.Category {
	case store.CategoryFree, store.CategoryRecommend:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "category must be FREE or RECOMMEND"})
		return
	}

	post, err := s.posts.Create(r.Context(), userID, req.Title, req.Content, req.Category, req.Song)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.PostFilter{Category: query.Get("category")}
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

	posts, err := s.posts.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Posts []store.Post `json:"posts"`
	}{Posts: posts})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	var req postUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title and content are required"})
		return
	}

	post, err := s.posts.Update(r.Context(), userID, id, req.Title, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	if err := s.posts.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	comments, err := s.comments.ListByPost(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Comments []store.Comment `json:"comments"`
	}{Comments: comments})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid post id"})
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	comment, err := s.comments.Create(r.Context(), userID, id, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	comment, err := s.comments.Update(r.Context(), userID, id, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}

	if err := s.comments.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
