package main

import (
	"context"
	"net/http"
	"os"

	"soundcrate/internal/logging"
	"soundcrate/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger := logging.Setup(logging.Config{})
		logger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})

	db, err := openDatabase(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	dataStore := store.New(db)
	handler := newHTTPHandler(cfg, dataStore)

	logger.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
