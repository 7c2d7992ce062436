// Package enrich generates structured AI summaries for stored places.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

// ErrPlaceNotFound is returned when the place to enrich does not exist.
var ErrPlaceNotFound = eris.New("enrich: place not found")

// Store is the persistence surface enrichment needs.
type Store interface {
	GetPlace(ctx context.Context, id string) (*model.Place, error)
	UpdateAISummary(ctx context.Context, id string, summary []byte, rating string, at time.Time) error
}

// Enricher runs the enrichment flow for one place at a time.
type Enricher struct {
	store Store
	gen   Generator
	now   func() time.Time
}

// New creates an Enricher.
func New(st Store, gen Generator) *Enricher {
	return &Enricher{store: st, gen: gen, now: time.Now}
}

// Enrich generates and stores a summary for placeID. A reply that cannot be
// parsed yields a Fallback summary and a nil error; nothing is written in
// that case. Re-running overwrites the stored summary.
func (e *Enricher) Enrich(ctx context.Context, placeID string) (*model.AISummary, error) {
	log := zap.L().With(zap.String("place_id", placeID))

	p, err := e.store.GetPlace(ctx, placeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "enrich: load place")
	}

	raw, err := e.gen.Generate(ctx, BuildPrompt(p))
	if err != nil {
		return nil, eris.Wrap(err, "enrich: generate")
	}

	summary, err := Parse(raw)
	if err != nil {
		log.Warn("enrich: unusable model reply, returning fallback", zap.Error(err))
		return Fallback(p, err), nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: encode summary")
	}
	if err := e.store.UpdateAISummary(ctx, p.ID, data, summary.ChatGPTRating, e.now().UTC()); err != nil {
		return nil, eris.Wrap(err, "enrich: save summary")
	}

	log.Info("enrich: summary stored", zap.String("rating", summary.ChatGPTRating))
	return summary, nil
}
