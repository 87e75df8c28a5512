package main

import (
	"context"
	"net/http"
	"os"

	"mymusicopinion/internal/logging"
	"mymusicopinion/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fallback := logging.New(logging.Config{})
		fallback.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logging.SetGlobal(logger)

	db, err := openDatabase(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	dataStore := store.New(db)

	if err := bootstrapDemoData(context.Background(), dataStore); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap demo data")
	}

	handler, err := newHTTPHandler(cfg, dataStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build HTTP handler")
	}

	logger.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
