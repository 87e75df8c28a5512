package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"mymusicopinion/internal/app/comments"
	"mymusicopinion/internal/app/posts"
	"mymusicopinion/internal/app/reactions"
	"mymusicopinion/internal/app/reviews"
	"mymusicopinion/internal/app/search"
	"mymusicopinion/internal/app/songs"
	"mymusicopinion/internal/app/users"
	"mymusicopinion/internal/auth"
	"mymusicopinion/internal/httpapi"
	"mymusicopinion/internal/musicapi"
	"mymusicopinion/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, logger zerolog.Logger) (http.Handler, error) {
	tokens, err := auth.NewManager(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	userSvc := users.New(dataStore, tokens)
	songSvc := songs.New(dataStore)
	reviewSvc := reviews.New(dataStore)
	postSvc := posts.New(dataStore)
	commentSvc := comments.New(dataStore)
	reactionSvc := reactions.New(dataStore)

	var videos musicapi.VideoFinder
	if cfg.YouTubeAPIKey != "" {
		videos = musicapi.NewYouTubeClient(cfg.YouTubeAPIKey)
	} else {
		logger.Info().Msg("YOUTUBE_API_KEY not set, video lookup disabled")
	}
	searchSvc := search.New(musicapi.NewITunesClient(), videos, dataStore, logger)

	server := httpapi.New(userSvc, songSvc, reviewSvc, postSvc, commentSvc, reactionSvc, searchSvc, logger)

	handler := withCORS(cfg.AllowedOrigins, server.Routes())
	handler = httpapi.RequestLogging(logger)(handler)
	handler = httpapi.Recovery(logger)(handler)
	return handler, nil
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
