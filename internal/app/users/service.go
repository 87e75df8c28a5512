package users

import (
	"context"

	"mymusicopinion/internal/auth"
	"mymusicopinion/internal/store"
)

// Store defines persistence operations required for account workflows.
type Store interface {
	CreateUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (store.User, error)
	UserByUsername(ctx context.Context, username string) (store.User, error)
	UserByID(ctx context.Context, id int64) (store.User, error)
	UpdateUser(ctx context.Context, userID int64, password, bio *string) (store.User, error)
	ReviewsByUser(ctx context.Context, userID int64) ([]store.Review, error)
	PostsByUser(ctx context.Context, userID int64) ([]store.Post, error)
}

// Service describes high level account operations used by HTTP handlers.
type Service interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Resolve(ctx context.Context, token string) (store.User, error)
	Profile(ctx context.Context, userID int64) (store.User, error)
	UpdateProfile(ctx context.Context, userID int64, password, bio *string) (store.User, error)
	Reviews(ctx context.Context, userID int64) ([]store.Review, error)
	Posts(ctx context.Context, userID int64) ([]store.Post, error)
}

type service struct {
	store  Store
	tokens *auth.Manager
}

// New constructs an account Service backed by the given store and token
// manager.
func New(st Store, tokens *auth.Manager) Service {
	return &service{store: st, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateUser(ctx, username, password)
}

// Login validates credentials and issues a signed bearer token.
func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.Username)
}

// Resolve verifies a bearer token and loads the account it names. Any
// verification failure propagates; callers decide whether to treat the
// request as anonymous.
func (s *service) Resolve(ctx context.Context, token string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}

	username, err := s.tokens.Verify(token)
	if err != nil {
		return store.User{}, err
	}
	return s.store.UserByUsername(ctx, username)
}

func (s *service) Profile(ctx context.Context, userID int64) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, password, bio *string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UpdateUser(ctx, userID, password, bio)
}

func (s *service) Reviews(ctx context.Context, userID int64) ([]store.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ReviewsByUser(ctx, userID)
}

func (s *service) Posts(ctx context.Context, userID int64) ([]store.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PostsByUser(ctx, userID)
}
