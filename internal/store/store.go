// Package store persists coffee places and the photo audit log.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

// ErrNotFound is returned when a place does not exist.
var ErrNotFound = eris.New("store: place not found")

// ListOptions controls place listing.
type ListOptions struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// normalize clamps the limit to [1, maxListLimit] and the offset to >= 0.
func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = defaultListLimit
	}
	if o.Limit > maxListLimit {
		o.Limit = maxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Store defines the persistence interface for coffee places.
type Store interface {
	// Places
	GetPlace(ctx context.Context, id string) (*model.Place, error)
	GetPlaceBySlug(ctx context.Context, slug string) (*model.Place, error)
	ListPlaces(ctx context.Context, opts ListOptions) ([]model.Place, error)
	UpsertPlace(ctx context.Context, p *model.Place) error

	// SlugOwner returns the id of the place holding slug, if any.
	SlugOwner(ctx context.Context, slug string) (id string, found bool, err error)

	// AI enrichment
	UpdateAISummary(ctx context.Context, id string, summary []byte, rating string, at time.Time) error

	// Photo audit log (write-only)
	LogPhoto(ctx context.Context, entry model.PhotoLog) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
