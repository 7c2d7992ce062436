package main

import (
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/vilniuscoffee/coffee-finder/internal/enrich"
	"github.com/vilniuscoffee/coffee-finder/internal/ingest"
	"github.com/vilniuscoffee/coffee-finder/internal/slug"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
	"github.com/vilniuscoffee/coffee-finder/pkg/objstore"
)

// newFetchRunner wires one fetch run: a fresh slug resolver per run, one
// limiter shared by search, details and photo calls.
func newFetchRunner(st store.Store) (*ingest.Runner, error) {
	var opts []google.Option
	if cfg.Google.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(cfg.Google.BaseURL))
	}
	places := google.NewClient(cfg.Google.Key, opts...)

	objects, err := objstore.New(objstore.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicURL:       cfg.Storage.PublicURL,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init object storage")
	}

	limit := rate.Inf
	if cfg.Google.RateLimit > 0 {
		limit = rate.Limit(cfg.Google.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	photos := ingest.NewPhotoPipeline(places, objects, st, limiter, &cfg.Photos)
	rec := ingest.NewReconciler(slug.NewResolver(st), photos)
	return ingest.NewRunner(places, st, rec, limiter, cfg.Search), nil
}

func newEnricher(st store.Store) (*enrich.Enricher, error) {
	gen, err := enrich.NewGenerator(&cfg.AI)
	if err != nil {
		return nil, eris.Wrap(err, "init ai generator")
	}
	return enrich.New(st, gen), nil
}
