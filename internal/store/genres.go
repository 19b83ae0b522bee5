package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soundcrate/internal/models"
)

// ListGenres returns all genres ordered by title.
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title
		FROM genres
		ORDER BY title ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Title); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}

// GetGenre returns a genre by id.
func (s *Store) GetGenre(ctx context.Context, id int64) (models.Genre, error) {
	var g models.Genre
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title
		FROM genres
		WHERE id = $1
	`, id).Scan(&g.ID, &g.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Genre{}, ErrGenreNotFound
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("get genre: %w", err)
	}
	return g, nil
}

// CreateGenre persists a new genre.
func (s *Store) CreateGenre(ctx context.Context, title string) (models.Genre, error) {
	var g models.Genre
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO genres (title)
		VALUES ($1)
		RETURNING id, title
	`, title).Scan(&g.ID, &g.Title)
	if err != nil {
		return models.Genre{}, fmt.Errorf("insert genre: %w", err)
	}
	return g, nil
}

// UpdateGenre replaces the title of an existing genre.
func (s *Store) UpdateGenre(ctx context.Context, id int64, title string) (models.Genre, error) {
	var g models.Genre
	err := s.db.QueryRowContext(ctx, `
		UPDATE genres
		SET title = $2
		WHERE id = $1
		RETURNING id, title
	`, id, title).Scan(&g.ID, &g.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Genre{}, ErrGenreNotFound
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("update genre: %w", err)
	}
	return g, nil
}

// DeleteGenre removes a genre. Deleting an absent genre affects zero rows.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	return nil
}
