package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"mymusicopinion/internal/app/search"
	"mymusicopinion/internal/musicapi"
	"mymusicopinion/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Resolve(ctx context.Context, token string) (store.User, error)
	Profile(ctx context.Context, userID int64) (store.User, error)
	UpdateProfile(ctx context.Context, userID int64, password, bio *string) (store.User, error)
	Reviews(ctx context.Context, userID int64) ([]store.Review, error)
	Posts(ctx context.Context, userID int64) ([]store.Post, error)
}

// SongService exposes song catalog queries.
type SongService interface {
	Get(ctx context.Context, id int64) (store.Song, error)
	List(ctx context.Context, filter store.SongFilter) ([]store.Song, error)
	TopByArtist(ctx context.Context, artist string) ([]store.Song, error)
}

// ReviewService coordinates song review workflows.
type ReviewService interface {
	Create(ctx context.Context, userID int64, ref store.SongRef, rating int, comment string) (store.Review, error)
	Update(ctx context.Context, userID, reviewID int64, rating int, comment string) (store.Review, error)
	Delete(ctx context.Context, userID, reviewID int64) error
	ListBySong(ctx context.Context, songID int64, sort string) ([]store.Review, error)
}

// PostService coordinates community post workflows.
type PostService interface {
	Create(ctx context.Context, userID int64, title, content, category string, ref *store.SongRef) (store.Post, error)
	Get(ctx context.Context, id int64) (store.Post, error)
	List(ctx context.Context, filter store.PostFilter) ([]store.Post, error)
	Update(ctx context.Context, userID, postID int64, title, content string) (store.Post, error)
	Delete(ctx context.Context, userID, postID int64) error
}

// CommentService coordinates post comment workflows.
type CommentService interface {
	Create(ctx context.Context, userID, postID int64, text string) (store.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]store.Comment, error)
	Update(ctx context.Context, userID, commentID int64, text string) (store.Comment, error)
	Delete(ctx context.Context, userID, commentID int64) error
}

// ReactionService handles like and favorite toggles.
type ReactionService interface {
	ToggleLike(ctx context.Context, userID int64, kind store.TargetKind, targetID int64) (bool, error)
	ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error)
	SongStatus(ctx context.Context, userID, songID int64) (store.SongStatus, error)
	Favorites(ctx context.Context, userID int64) ([]store.Song, error)
}

// SearchService queries the external music catalog and video provider.
type SearchService interface {
	Search(ctx context.Context, term string, kind musicapi.SearchType) ([]search.Result, error)
	ArtistAlbums(ctx context.Context, artist string) ([]musicapi.Album, error)
	VideoID(ctx context.Context, term string) (string, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	songs     SongService
	reviews   ReviewService
	posts     PostService
	comments  CommentService
	reactions ReactionService
	search    SearchService
	logger    zerolog.Logger
}

// New configures a Server with the given services.
func New(
	users UserService,
	songs SongService,
	reviews ReviewService,
	posts PostService,
	comments CommentService,
	reactions ReactionService,
	searchService SearchService,
	logger zerolog.Logger,
) *Server {
	return &Server{
		users:     users,
		songs:     songs,
		reviews:   reviews,
		posts:     posts,
		comments:  comments,
		reactions: reactions,
		search:    searchService,
		logger:    logger,
	}
}

// Routes exposes the HTTP handlers. Every request passes through the identity
// middleware first; handlers that mutate state reject anonymous callers with
// a uniform 401.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.HandleFunc("GET /api/me", s.handleProfile)
	mux.HandleFunc("PUT /api/me", s.handleUpdateProfile)
	mux.HandleFunc("GET /api/me/reviews", s.handleMyReviews)
	mux.HandleFunc("GET /api/me/posts", s.handleMyPosts)
	mux.HandleFunc("GET /api/me/favorites", s.handleMyFavorites)

	mux.HandleFunc("GET /api/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/songs/{id}", s.handleGetSong)
	mux.HandleFunc("GET /api/songs/{id}/status", s.handleSongStatus)
	mux.HandleFunc("GET /api/songs/{id}/reviews", s.handleSongReviews)
	mux.HandleFunc("POST /api/songs/{id}/like", s.handleSongLike)
	mux.HandleFunc("POST /api/songs/{id}/favorite", s.handleSongFavorite)

	mux.HandleFunc("POST /api/reviews", s.handleCreateReview)
	mux.HandleFunc("PUT /api/reviews/{id}", s.handleUpdateReview)
	mux.HandleFunc("DELETE /api/reviews/{id}", s.handleDeleteReview)
	mux.HandleFunc("POST /api/reviews/{id}/like", s.handleReviewLike)

	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("POST /api/posts/{id}/like", s.handlePostLike)
	mux.HandleFunc("GET /api/posts/{id}/comments", s.handlePostComments)
	mux.HandleFunc("POST /api/posts/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("PUT /api/comments/{id}", s.handleUpdateComment)
	mux.HandleFunc("DELETE /api/comments/{id}", s.handleDeleteComment)
	mux.HandleFunc("POST /api/comments/{id}/like", s.handleCommentLike)

	mux.HandleFunc("GET /api/music/search", s.handleMusicSearch)
	mux.HandleFunc("GET /api/music/artist-albums", s.handleArtistAlbums)
	mux.HandleFunc("GET /api/music/youtube-video", s.handleYouTubeVideo)

	mux.HandleFunc("GET /api/artists/{artist}/top-tracks", s.handleArtistTopTracks)

	return s.withIdentity(mux)
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type toggleResponse struct {
	Active bool `json:"active"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.Signup(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Missing users and wrong passwords produce the same response so a
		// caller cannot tell which usernames exist.
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: store.ErrInvalidCredentials.Error()})
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	user, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userID, req.Password, req.Bio)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleMyReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	reviews, err := s.users.Reviews(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Reviews []store.Review `json:"reviews"`
	}{Reviews: reviews})
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	posts, err := s.users.Posts(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Posts []store.Post `json:"posts"`
	}{Posts: posts})
}

func (s *Server) handleMyFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	songs, err := s.reactions.Favorites(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}

// requireUser extracts the resolved identity or answers with a uniform 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return 0, false
	}
	return userID, true
}

// writeError maps store sentinel errors onto HTTP statuses. Anything
// unrecognized is logged and answered with a generic 500 body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrPostNotFound),
		errors.Is(err, store.ErrCommentNotFound),
		errors.Is(err, store.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateReview):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrInvalidRating):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
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
