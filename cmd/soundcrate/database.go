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
	dbPingTimeout    = 5 * time.Second
	dbConnectWindow  = 30 * time.Second
	dbInitialBackoff = 500 * time.Millisecond
	dbMaxBackoff     = 5 * time.Second
)

// openDatabase opens a Postgres connection and pings it until the
// instance responds, giving up after dbConnectWindow. Failed attempts
// are logged so a slow-starting database is visible in the output.
func openDatabase(ctx context.Context, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, dbConnectWindow)
	defer cancel()

	backoff := dbInitialBackoff
	var lastErr error

	for attempt := 1; ; attempt++ {
		pingCtx, cancelPing := context.WithTimeout(ctx, dbPingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancelPing()

		if lastErr == nil {
			if attempt > 1 {
				logger.Info().Int("attempts", attempt).Msg("database reachable")
			}
			return db, nil
		}

		logger.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("database not ready")

		select {
		case <-waitCtx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", lastErr)
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > dbMaxBackoff {
			backoff = dbMaxBackoff
		}
	}
}
