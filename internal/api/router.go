// Package api serves places and on-demand AI enrichment over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

// PlaceStore is the read surface the API needs.
type PlaceStore interface {
	GetPlace(ctx context.Context, id string) (*model.Place, error)
	GetPlaceBySlug(ctx context.Context, slug string) (*model.Place, error)
	ListPlaces(ctx context.Context, opts store.ListOptions) ([]model.Place, error)
	Ping(ctx context.Context) error
}

// Enricher generates an AI summary for a place.
type Enricher interface {
	Enrich(ctx context.Context, placeID string) (*model.AISummary, error)
}

// Deps are the collaborators of the router. Enricher may be nil, in which
// case the enrichment endpoint answers 503.
type Deps struct {
	Store          PlaceStore
	Enricher       Enricher
	AllowedOrigins []string
}

type handler struct {
	store    PlaceStore
	enricher Enricher
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	h := &handler{store: d.Store, enricher: d.Enricher}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/places", h.listPlaces)
		r.Get("/places/{key}", h.getPlace)
		r.Post("/enrich-chatgpt", h.enrich)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
