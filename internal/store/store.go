// Package store provides persistence backed by Postgres. Every list and
// get eagerly loads the fixed relation set of its entity in a bounded
// number of queries, and every multi-statement mutation runs inside a
// single transaction.
package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserNotFound     = errors.New("user does not exist")
	ErrGenreNotFound    = errors.New("genre does not exist")
	ErrAlbumNotFound    = errors.New("album does not exist")
	ErrTrackNotFound    = errors.New("track does not exist")
	ErrPlaylistNotFound = errors.New("playlist does not exist")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
