// Package ingest fetches coffee places from the Places API, reconciles them
// with stored records and persists the result.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vilniuscoffee/coffee-finder/internal/config"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

const defaultMaxResults = 100

// Store is the persistence surface a fetch run needs.
type Store interface {
	GetPlace(ctx context.Context, id string) (*model.Place, error)
	UpsertPlace(ctx context.Context, p *model.Place) error
}

// RunResult summarizes one fetch run.
type RunResult struct {
	Discovered int `json:"discovered"`
	Reconciled int `json:"reconciled"`
	Persisted  int `json:"persisted"`
	Failed     int `json:"failed"`
}

// Runner executes fetch runs: page through nearby search, fetch details,
// reconcile, then upsert everything collected.
type Runner struct {
	places     google.Client
	store      Store
	reconciler *Reconciler
	limiter    *rate.Limiter
	cfg        config.SearchConfig

	// Sleep waits between result pages. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now stamps reconciled records.
	Now func() time.Time
}

// NewRunner creates a Runner. limiter paces Places calls; nil means unlimited.
func NewRunner(places google.Client, st Store, rec *Reconciler, limiter *rate.Limiter, cfg config.SearchConfig) *Runner {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	return &Runner{
		places:     places,
		store:      st,
		reconciler: rec,
		limiter:    limiter,
		cfg:        cfg,
		Sleep:      sleepContext,
		Now:        time.Now,
	}
}

// Run performs one fetch run. Per-place failures are logged and skipped;
// the returned error is non-nil only when ctx is cancelled before anything
// could be persisted.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	log := zap.L().With(zap.String("keyword", r.cfg.Keyword), zap.Int("max_results", r.cfg.MaxResults))
	result := &RunResult{}

	var (
		records   []*model.Place
		pageToken string
	)

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			break
		}
		if err := r.limiter.Wait(ctx); err != nil {
			log.Warn("ingest: rate limit wait aborted", zap.Error(err))
			break
		}

		resp, err := r.places.NearbySearch(ctx, r.nearbyRequest(pageToken))
		if err != nil {
			log.Error("ingest: nearby search failed, ending pagination", zap.Int("page", page), zap.Error(err))
			break
		}
		log.Info("ingest: search page", zap.Int("page", page), zap.Int("results", len(resp.Results)))

		for _, hit := range resp.Results {
			if len(records) >= r.cfg.MaxResults || ctx.Err() != nil {
				break
			}
			result.Discovered++

			rec, err := r.fetchPlace(ctx, hit.PlaceID)
			if err != nil {
				result.Failed++
				log.Warn("ingest: skipping place", zap.String("place_id", hit.PlaceID), zap.String("name", hit.Name), zap.Error(err))
				continue
			}
			records = append(records, rec)
			result.Reconciled++
		}

		pageToken = resp.NextPageToken
		if pageToken == "" || len(records) >= r.cfg.MaxResults {
			break
		}
		if err := r.Sleep(ctx, r.pageDelay()); err != nil {
			log.Warn("ingest: page delay aborted", zap.Error(err))
			break
		}
	}

	log.Info("ingest: places collected", zap.Int("count", len(records)))

	// Persist with a context that survives cancellation of the search phase.
	persistCtx := context.WithoutCancel(ctx)
	for _, p := range records {
		if err := r.store.UpsertPlace(persistCtx, p); err != nil {
			result.Failed++
			log.Error("ingest: upsert failed", zap.String("place_id", p.ID), zap.String("name", p.Name), zap.Error(err))
			continue
		}
		result.Persisted++
	}

	log.Info("ingest: run complete",
		zap.Int("discovered", result.Discovered),
		zap.Int("reconciled", result.Reconciled),
		zap.Int("persisted", result.Persisted),
		zap.Int("failed", result.Failed),
	)

	if result.Persisted == 0 && ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

func (r *Runner) fetchPlace(ctx context.Context, placeID string) (*model.Place, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: rate limit wait")
	}
	details, err := r.places.Details(ctx, placeID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: place details")
	}

	existing, err := r.store.GetPlace(ctx, placeID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, eris.Wrap(err, "ingest: load stored place")
	}

	if details.PlaceID == "" {
		details.PlaceID = placeID
	}
	return r.reconciler.Reconcile(ctx, details, existing, r.Now()), nil
}

func (r *Runner) nearbyRequest(pageToken string) google.NearbyRequest {
	if pageToken != "" {
		return google.NearbyRequest{PageToken: pageToken}
	}
	return google.NearbyRequest{
		Location: google.LatLng{Lat: r.cfg.Lat, Lng: r.cfg.Lng},
		Radius:   r.cfg.RadiusM,
		Type:     r.cfg.Type,
		Keyword:  r.cfg.Keyword,
	}
}

func (r *Runner) pageDelay() time.Duration {
	return time.Duration(r.cfg.PageDelaySecs * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
