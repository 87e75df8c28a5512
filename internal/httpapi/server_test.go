package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"mymusicopinion/internal/app/search"
	"mymusicopinion/internal/auth"
	"mymusicopinion/internal/musicapi"
	"mymusicopinion/internal/store"
)

type stubUserService struct {
	signupErr error
	loginErr  error
	token     string

	resolveUser store.User
	resolveErr  error

	lastResolvedToken string
}

func (s *stubUserService) Signup(ctx context.Context, username, password string) error {
	return s.signupErr
}

func (s *stubUserService) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.token, nil
}

func (s *stubUserService) Resolve(ctx context.Context, token string) (store.User, error) {
	s.lastResolvedToken = token
	if s.resolveErr != nil {
		return store.User{}, s.resolveErr
	}
	return s.resolveUser, nil
}

func (s *stubUserService) Profile(ctx context.Context, userID int64) (store.User, error) {
	return s.resolveUser, nil
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID int64, password, bio *string) (store.User, error) {
	return s.resolveUser, nil
}

func (s *stubUserService) Reviews(ctx context.Context, userID int64) ([]store.Review, error) {
	return nil, nil
}

func (s *stubUserService) Posts(ctx context.Context, userID int64) ([]store.Post, error) {
	return nil, nil
}

type stubSongService struct {
	song    store.Song
	songErr error
	songs   []store.Song

	lastArtist string
}

func (s *stubSongService) Get(ctx context.Context, id int64) (store.Song, error) {
	if s.songErr != nil {
		return store.Song{}, s.songErr
	}
	return s.song, nil
}

func (s *stubSongService) List(ctx context.Context, filter store.SongFilter) ([]store.Song, error) {
	return s.songs, nil
}

func (s *stubSongService) TopByArtist(ctx context.Context, artist string) ([]store.Song, error) {
	s.lastArtist = artist
	return s.songs, nil
}

type stubReviewService struct {
	review    store.Review
	createErr error

	lastUserID int64
	lastRef    store.SongRef
}

func (s *stubReviewService) Create(ctx context.Context, userID int64, ref store.SongRef, rating int, comment string) (store.Review, error) {
	s.lastUserID = userID
	s.lastRef = ref
	if s.createErr != nil {
		return store.Review{}, s.createErr
	}
	return s.review, nil
}

func (s *stubReviewService) Update(ctx context.Context, userID, reviewID int64, rating int, comment string) (store.Review, error) {
	return s.review, nil
}

func (s *stubReviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	return nil
}

func (s *stubReviewService) ListBySong(ctx context.Context, songID int64, sort string) ([]store.Review, error) {
	return nil, nil
}

type stubPostService struct {
	post store.Post
}

func (s *stubPostService) Create(ctx context.Context, userID int64, title, content, category string, ref *store.SongRef) (store.Post, error) {
	return s.post, nil
}

func (s *stubPostService) Get(ctx context.Context, id int64) (store.Post, error) {
	return s.post, nil
}

func (s *stubPostService) List(ctx context.Context, filter store.PostFilter) ([]store.Post, error) {
	return nil, nil
}

func (s *stubPostService) Update(ctx context.Context, userID, postID int64, title, content string) (store.Post, error) {
	return s.post, nil
}

func (s *stubPostService) Delete(ctx context.Context, userID, postID int64) error {
	return nil
}

type stubCommentService struct {
	comment store.Comment
}

func (s *stubCommentService) Create(ctx context.Context, userID, postID int64, text string) (store.Comment, error) {
	return s.comment, nil
}

func (s *stubCommentService) ListByPost(ctx context.Context, postID int64) ([]store.Comment, error) {
	return nil, nil
}

func (s *stubCommentService) Update(ctx context.Context, userID, commentID int64, text string) (store.Comment, error) {
	return s.comment, nil
}

func (s *stubCommentService) Delete(ctx context.Context, userID, commentID int64) error {
	return nil
}

type stubReactionService struct {
	liked     bool
	favorited bool
	toggleErr error

	lastUserID int64
	lastKind   store.TargetKind
	lastTarget int64
}

func (s *stubReactionService) ToggleLike(ctx context.Context, userID int64, kind store.TargetKind, targetID int64) (bool, error) {
	s.lastUserID = userID
	s.lastKind = kind
	s.lastTarget = targetID
	if s.toggleErr != nil {
		return false, s.toggleErr
	}
	return s.liked, nil
}

func (s *stubReactionService) ToggleFavorite(ctx context.Context, userID, songID int64) (bool, error) {
	s.lastUserID = userID
	s.lastTarget = songID
	if s.toggleErr != nil {
		return false, s.toggleErr
	}
	return s.favorited, nil
}

func (s *stubReactionService) SongStatus(ctx context.Context, userID, songID int64) (store.SongStatus, error) {
	return store.SongStatus{Liked: s.liked, Favorited: s.favorited}, nil
}

func (s *stubReactionService) Favorites(ctx context.Context, userID int64) ([]store.Song, error) {
	return nil, nil
}

type stubSearchService struct {
	results []search.Result
	err     error

	videoID  string
	videoErr error
}

func (s *stubSearchService) Search(ctx context.Context, term string, kind musicapi.SearchType) ([]search.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSearchService) ArtistAlbums(ctx context.Context, artist string) ([]musicapi.Album, error) {
	return nil, s.err
}

func (s *stubSearchService) VideoID(ctx context.Context, term string) (string, error) {
	if s.videoErr != nil {
		return "", s.videoErr
	}
	return s.videoID, nil
}

type serverFixture struct {
	users     *stubUserService
	songs     *stubSongService
	reviews   *stubReviewService
	posts     *stubPostService
	comments  *stubCommentService
	reactions *stubReactionService
	search    *stubSearchService
	handler   http.Handler
}

func newFixture() *serverFixture {
	f := &serverFixture{
		users:     &stubUserService{resolveUser: store.User{ID: 7, Username: "casey"}},
		songs:     &stubSongService{},
		reviews:   &stubReviewService{},
		posts:     &stubPostService{},
		comments:  &stubCommentService{},
		reactions: &stubReactionService{},
		search:    &stubSearchService{},
	}
	srv := New(f.users, f.songs, f.reviews, f.posts, f.comments, f.reactions, f.search, zerolog.Nop())
	f.handler = srv.Routes()
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginReturnsToken(t *testing.T) {
	f := newFixture()
	f.users.token = "issued-token"

	rec := f.do(t, http.MethodPost, "/api/login", "", loginRequest{Username: "casey", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "issued-token" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestLoginFailureIsOpaque(t *testing.T) {
	f := newFixture()
	f.users.loginErr = store.ErrInvalidCredentials

	rec := f.do(t, http.MethodPost, "/api/login", "", loginRequest{Username: "ghost", Password: "pw"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	f := newFixture()
	f.users.signupErr = store.ErrUserExists

	rec := f.do(t, http.MethodPost, "/api/signup", "", signupRequest{Username: "casey", Password: "pw"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestMutationsRequireIdentity(t *testing.T) {
	f := newFixture()

	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/songs/1/like", nil},
		{http.MethodPost, "/api/songs/1/favorite", nil},
		{http.MethodPost, "/api/reviews", reviewRequest{Song: store.SongRef{ItunesTrackID: 5, Title: "x"}, Rating: 4}},
		{http.MethodPost, "/api/posts", postRequest{Title: "t", Content: "c", Category: store.CategoryFree}},
		{http.MethodPost, "/api/posts/1/comments", commentRequest{Text: "hi"}},
		{http.MethodPost, "/api/comments/1/like", nil},
	}

	for _, tc := range paths {
		rec := f.do(t, tc.method, tc.path, "", tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 for anonymous caller, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestInvalidTokenIsTreatedAsAnonymous(t *testing.T) {
	f := newFixture()
	f.users.resolveErr = auth.ErrInvalidToken

	rec := f.do(t, http.MethodPost, "/api/songs/1/like", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if f.users.lastResolvedToken != "garbage-token" {
		t.Fatalf("expected resolve attempt, got %q", f.users.lastResolvedToken)
	}

	// Read-only endpoints still work for the same caller.
	rec = f.do(t, http.MethodGet, "/api/songs", "garbage-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on public route, got %d", rec.Code)
	}
}

func TestLikeToggleReportsResultingState(t *testing.T) {
	f := newFixture()
	f.reactions.liked = true

	rec := f.do(t, http.MethodPost, "/api/songs/42/like", "valid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Active {
		t.Fatal("expected active=true after toggle on")
	}
	if f.reactions.lastUserID != 7 || f.reactions.lastKind != store.TargetSong || f.reactions.lastTarget != 42 {
		t.Fatalf("unexpected toggle args: user=%d kind=%s target=%d",
			f.reactions.lastUserID, f.reactions.lastKind, f.reactions.lastTarget)
	}
}

func TestCommentLikeRoutesToCommentKind(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/comments/9/like", "valid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.reactions.lastKind != store.TargetComment || f.reactions.lastTarget != 9 {
		t.Fatalf("unexpected toggle args: kind=%s target=%d", f.reactions.lastKind, f.reactions.lastTarget)
	}
}

func TestLikeMissingTargetIs404(t *testing.T) {
	f := newFixture()
	f.reactions.toggleErr = store.ErrPostNotFound

	rec := f.do(t, http.MethodPost, "/api/posts/999/like", "valid", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFavoriteToggle(t *testing.T) {
	f := newFixture()
	f.reactions.favorited = false

	rec := f.do(t, http.MethodPost, "/api/songs/42/favorite", "valid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Active {
		t.Fatal("expected active=false after toggle off")
	}
}

func TestCreateReviewDuplicateIs409(t *testing.T) {
	f := newFixture()
	f.reviews.createErr = store.ErrDuplicateReview

	rec := f.do(t, http.MethodPost, "/api/reviews", "valid",
		reviewRequest{Song: store.SongRef{ItunesTrackID: 5, Title: "Teardrop"}, Rating: 4})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCreateReviewInvalidRatingIs400(t *testing.T) {
	f := newFixture()
	f.reviews.createErr = store.ErrInvalidRating

	rec := f.do(t, http.MethodPost, "/api/reviews", "valid",
		reviewRequest{Song: store.SongRef{ItunesTrackID: 5, Title: "Teardrop"}, Rating: 9})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateReviewRequiresSongRef(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/reviews", "valid", reviewRequest{Rating: 4})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing song ref, got %d", rec.Code)
	}
}

func TestUpdatePostRequiresTitleAndContent(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/api/posts/1", "valid", postUpdateRequest{Title: "", Content: "still here"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, "/api/posts/1", "valid", postUpdateRequest{Title: "still here", Content: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d", rec.Code)
	}
}

func TestUpdateCommentRequiresText(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/api/comments/1", "valid", commentRequest{Text: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/posts", "valid",
		postRequest{Title: "t", Content: "c", Category: "NEWS"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMusicSearchRequiresTerm(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/music/search", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMusicSearchUpstreamFailureIs500(t *testing.T) {
	f := newFixture()
	f.search.err = errors.New("upstream down")

	rec := f.do(t, http.MethodGet, "/api/music/search?term=teardrop", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestYouTubeVideoLookup(t *testing.T) {
	f := newFixture()
	f.search.videoID = "dQw4w9WgXcQ"

	rec := f.do(t, http.MethodGet, "/api/music/youtube-video?term=teardrop", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id %q", resp.VideoID)
	}
}

func TestYouTubeVideoNotFoundIs404(t *testing.T) {
	f := newFixture()
	f.search.videoErr = musicapi.ErrVideoNotFound

	rec := f.do(t, http.MethodGet, "/api/music/youtube-video?term=unheard", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestArtistTopTracks(t *testing.T) {
	f := newFixture()
	f.songs.songs = []store.Song{
		{ID: 1, Title: "Teardrop", Artist: "Massive Attack", AverageRating: 4.8},
		{ID: 2, Title: "Angel", Artist: "Massive Attack", AverageRating: 4.5},
	}

	rec := f.do(t, http.MethodGet, "/api/artists/Massive%20Attack/top-tracks", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.songs.lastArtist != "Massive Attack" {
		t.Fatalf("unexpected artist %q", f.songs.lastArtist)
	}

	var resp struct {
		Songs []store.Song `json:"songs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Songs) != 2 || resp.Songs[0].Title != "Teardrop" {
		t.Fatalf("unexpected songs: %+v", resp.Songs)
	}
}
