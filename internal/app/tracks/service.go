// Package tracks exposes the catalog-wide track listing and lookup.
package tracks

import (
	"context"
	"net/url"

	"soundcrate/internal/models"
	"soundcrate/internal/page"
	"soundcrate/internal/store"
)

// Store captures the persistence needs for track lookups.
type Store interface {
	ListTracks(ctx context.Context, filter store.TrackFilter) ([]models.Track, error)
	GetTrack(ctx context.Context, id int64) (models.Track, error)
}

// Service coordinates track-related reads.
type Service interface {
	List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[models.Track], error)
	Get(ctx context.Context, id int64) (models.Track, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) List(ctx context.Context, u *url.URL, offset, limit int) (page.Page[models.Track], error) {
	tracks, err := s.store.ListTracks(ctx, store.TrackFilter{})
	if err != nil {
		return page.Page[models.Track]{}, err
	}
	return page.Paginate(tracks, offset, limit, u), nil
}

func (s *service) Get(ctx context.Context, id int64) (models.Track, error) {
	return s.store.GetTrack(ctx, id)
}
