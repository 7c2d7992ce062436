package ingest

import (
	"context"
	"time"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/slug"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

// Reconciler merges a freshly fetched place with its stored record.
type Reconciler struct {
	slugs  *slug.Resolver
	photos PhotoMigrator
}

// NewReconciler creates a Reconciler.
func NewReconciler(slugs *slug.Resolver, photos PhotoMigrator) *Reconciler {
	return &Reconciler{slugs: slugs, photos: photos}
}

// Reconcile builds the record to persist for d. Each field prefers the
// upstream value, then the stored one, then a zero default. Fields with no
// upstream source (secondary ratings, AI summary, trending scores) are
// carried over from existing. existing may be nil.
func (r *Reconciler) Reconcile(ctx context.Context, d *google.PlaceDetails, existing *model.Place, now time.Time) *model.Place {
	now = now.UTC()

	var out model.Place
	prev := existing
	if prev != nil {
		out = *prev
	} else {
		prev = &model.Place{}
	}

	out.ID = d.PlaceID
	out.Name = firstNonEmpty(d.Name, prev.Name)
	out.Address = firstNonEmpty(d.FormattedAddress, prev.Address)

	switch {
	case d.Geometry != nil:
		out.Location = model.Location{Lat: d.Geometry.Location.Lat, Lng: d.Geometry.Location.Lng}
	default:
		out.Location = prev.Location
	}

	out.Rating = prefer(d.Rating, prev.Rating)
	out.UserRatingsTotal = prefer(d.UserRatingsTotal, prev.UserRatingsTotal)
	out.Website = prefer(d.Website, prev.Website)
	out.InternationalPhoneNumber = prefer(d.InternationalPhoneNumber, prev.InternationalPhoneNumber)
	out.PriceLevel = prefer(d.PriceLevel, prev.PriceLevel)
	out.GoogleMapsURL = prefer(d.URL, prev.GoogleMapsURL)
	out.BusinessStatus = prefer(d.BusinessStatus, prev.BusinessStatus)
	out.OpeningHours = prefer(convertOpeningHours(d.OpeningHours), prev.OpeningHours)
	out.EditorialSummary = prefer(convertEditorialSummary(d.EditorialSummary), prev.EditorialSummary)

	out.PlaceTypes = prev.PlaceTypes
	if len(d.Types) > 0 {
		out.PlaceTypes = d.Types
	}

	out.PlaceFeatures = ExtractFeatures(d, prev.PlaceFeatures)
	out.Reviews = MergeReviews(prev.Reviews, ConvertReviews(d.PlaceID, d.Reviews))

	out.Photos = nil
	if len(d.Photos) > 0 && r.photos != nil {
		out.Photos = r.photos.Migrate(ctx, d.PlaceID, d.Photos)
	}
	if len(out.Photos) == 0 {
		out.Photos = prev.Photos
	}
	if out.Photos == nil {
		out.Photos = []model.Photo{}
	}

	if prev.Slug != "" {
		out.Slug = prev.Slug
		r.slugs.Keep(prev.Slug, out.ID)
	} else {
		out.Slug = r.slugs.Resolve(ctx, out.ID, slug.Base(out.Name, out.Address))
	}

	out.CreatedAt = prev.CreatedAt
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.LastUpdated = now

	return &out
}

func prefer[T any](fresh, stored *T) *T {
	if fresh != nil {
		return fresh
	}
	return stored
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func convertOpeningHours(h *google.OpeningHours) *model.OpeningHours {
	if h == nil {
		return nil
	}
	out := &model.OpeningHours{
		OpenNow:           h.OpenNow,
		WeekdayText:       h.WeekdayText,
		PermanentlyClosed: h.PermanentlyClosed,
	}
	if len(h.Periods) > 0 {
		out.Periods = make([]model.OpeningPeriod, len(h.Periods))
		for i, p := range h.Periods {
			out.Periods[i] = model.OpeningPeriod{Open: model.DayTime(p.Open)}
			if p.Close != nil {
				c := model.DayTime(*p.Close)
				out.Periods[i].Close = &c
			}
		}
	}
	return out
}

func convertEditorialSummary(s *google.EditorialSummary) *model.EditorialSummary {
	if s == nil || s.Overview == "" {
		return nil
	}
	return &model.EditorialSummary{Language: s.Language, Overview: s.Overview}
}
