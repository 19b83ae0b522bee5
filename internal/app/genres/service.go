// Package genres implements genre management.
package genres

import (
	"context"
	"errors"
	"strings"

	"soundcrate/internal/models"
)

// ErrTitleRequired rejects genres submitted without a title.
var ErrTitleRequired = errors.New("title is required")

// Store captures the persistence needs for genre management.
type Store interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetGenre(ctx context.Context, id int64) (models.Genre, error)
	CreateGenre(ctx context.Context, title string) (models.Genre, error)
	UpdateGenre(ctx context.Context, id int64, title string) (models.Genre, error)
	DeleteGenre(ctx context.Context, id int64) error
}

// Service coordinates genre operations.
type Service interface {
	List(ctx context.Context) ([]models.Genre, error)
	Get(ctx context.Context, id int64) (models.Genre, error)
	Create(ctx context.Context, title string) (models.Genre, error)
	Update(ctx context.Context, id int64, title string) (models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) List(ctx context.Context) ([]models.Genre, error) {
	return s.store.ListGenres(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.Genre, error) {
	return s.store.GetGenre(ctx, id)
}

func (s *service) Create(ctx context.Context, title string) (models.Genre, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Genre{}, ErrTitleRequired
	}
	return s.store.CreateGenre(ctx, title)
}

func (s *service) Update(ctx context.Context, id int64, title string) (models.Genre, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Genre{}, ErrTitleRequired
	}
	return s.store.UpdateGenre(ctx, id, title)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteGenre(ctx, id)
}
