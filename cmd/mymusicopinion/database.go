package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbPingTimeout  = 3 * time.Second
	dbConnectLimit = 45 * time.Second
	dbRetryPause   = 2 * time.Second
)

// openDatabase connects via the pgx stdlib driver. The database may still be
// starting when the API comes up, so pings are retried on a fixed cadence
// until dbConnectLimit elapses.
func openDatabase(ctx context.Context, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbConnectLimit)
	defer cancel()

	attempt := 0
	for {
		attempt++
		pingCtx, pingCancel := context.WithTimeout(ctx, dbPingTimeout)
		err = db.PingContext(pingCtx)
		pingCancel()
		if err == nil {
			return db, nil
		}

		logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		case <-time.After(dbRetryPause):
		}
	}
}
