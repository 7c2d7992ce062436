package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/vilniuscoffee/coffee-finder/internal/db"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

// placeColumns is the column order shared by inserts, selects and placeRow.
var placeColumns = []string{
	"id", "slug", "name", "address", "location",
	"rating", "user_ratings_total", "ring29_rating", "ring29_user_ratings_total",
	"photos", "reviews",
	"website", "international_phone_number", "price_level", "opening_hours",
	"google_maps_url", "business_status", "editorial_summary", "place_types", "place_features",
	"ai_summary", "ai_rating", "trending_score_web", "trending_score_social", "data_last_scraped_at",
	"created_at", "last_updated",
}

var placeSelectList = strings.Join(placeColumns, ", ")

// upsertPlaceConfig updates every column except the key and created_at,
// which is immutable once written.
func upsertPlaceConfig(placeholder func(int) string) db.UpsertConfig {
	return db.UpsertConfig{
		Table:        "coffee_places",
		Columns:      placeColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   db.Without(placeColumns, "id", "created_at"),
		Placeholder:  placeholder,
	}
}

// placeArgs encodes a place in placeColumns order. JSON columns are []byte,
// nil when the value is unknown.
func placeArgs(p *model.Place) ([]any, error) {
	location, err := json.Marshal(p.Location)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal location")
	}
	photos := p.Photos
	if photos == nil {
		photos = []model.Photo{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal photos")
	}
	reviews := p.Reviews
	if reviews == nil {
		reviews = []model.Review{}
	}
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal reviews")
	}

	openingHours, err := marshalOptional(p.OpeningHours, p.OpeningHours == nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal opening hours")
	}
	editorial, err := marshalOptional(p.EditorialSummary, p.EditorialSummary == nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal editorial summary")
	}
	types, err := marshalOptional(p.PlaceTypes, p.PlaceTypes == nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal place types")
	}
	features, err := marshalOptional(p.PlaceFeatures, p.PlaceFeatures == nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal place features")
	}
	summary, err := marshalOptional(p.AISummary, p.AISummary == nil)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal ai summary")
	}

	return []any{
		p.ID, p.Slug, p.Name, p.Address, location,
		p.Rating, p.UserRatingsTotal, p.Ring29Rating, p.Ring29UserRatingsTotal,
		photosJSON, reviewsJSON,
		p.Website, p.InternationalPhoneNumber, p.PriceLevel, openingHours,
		p.GoogleMapsURL, p.BusinessStatus, editorial, types, features,
		summary, p.AIRating, p.TrendingScoreWeb, p.TrendingScoreSocial, p.DataLastScrapedAt,
		p.CreatedAt.UTC(), p.LastUpdated.UTC(),
	}, nil
}

func marshalOptional(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

// placeRow receives one scanned coffee_places row before JSON decoding.
type placeRow struct {
	id, slug, name, address string

	location, photos, reviews                         []byte
	openingHours, editorial, types, features, summary []byte

	rating, ring29Rating, trendingWeb, trendingSocial *float64
	ratingsTotal, ring29Total, priceLevel             *int
	website, phone, mapsURL, businessStatus, aiRating *string

	scrapedAt              *time.Time
	createdAt, lastUpdated time.Time

	// SQLite keeps timestamps as RFC 3339 text.
	scrapedAtText              *string
	createdAtText, updatedText string
}

// dest returns scan targets in placeColumns order. textTimes selects the
// string timestamp targets used by SQLite.
func (r *placeRow) dest(textTimes bool) []any {
	d := []any{
		&r.id, &r.slug, &r.name, &r.address, &r.location,
		&r.rating, &r.ratingsTotal, &r.ring29Rating, &r.ring29Total,
		&r.photos, &r.reviews,
		&r.website, &r.phone, &r.priceLevel, &r.openingHours,
		&r.mapsURL, &r.businessStatus, &r.editorial, &r.types, &r.features,
		&r.summary, &r.aiRating, &r.trendingWeb, &r.trendingSocial,
	}
	if textTimes {
		return append(d, &r.scrapedAtText, &r.createdAtText, &r.updatedText)
	}
	return append(d, &r.scrapedAt, &r.createdAt, &r.lastUpdated)
}

func (r *placeRow) parseTextTimes() error {
	var err error
	if r.createdAtText != "" {
		if r.createdAt, err = time.Parse(time.RFC3339Nano, r.createdAtText); err != nil {
			return eris.Wrap(err, "store: parse created_at")
		}
	}
	if r.updatedText != "" {
		if r.lastUpdated, err = time.Parse(time.RFC3339Nano, r.updatedText); err != nil {
			return eris.Wrap(err, "store: parse last_updated")
		}
	}
	if r.scrapedAtText != nil && *r.scrapedAtText != "" {
		t, err := time.Parse(time.RFC3339Nano, *r.scrapedAtText)
		if err != nil {
			return eris.Wrap(err, "store: parse data_last_scraped_at")
		}
		r.scrapedAt = &t
	}
	return nil
}

func (r *placeRow) place() (*model.Place, error) {
	p := &model.Place{
		ID:                       r.id,
		Slug:                     r.slug,
		Name:                     r.name,
		Address:                  r.address,
		Rating:                   r.rating,
		UserRatingsTotal:         r.ratingsTotal,
		Ring29Rating:             r.ring29Rating,
		Ring29UserRatingsTotal:   r.ring29Total,
		Website:                  r.website,
		InternationalPhoneNumber: r.phone,
		PriceLevel:               r.priceLevel,
		GoogleMapsURL:            r.mapsURL,
		BusinessStatus:           r.businessStatus,
		AIRating:                 r.aiRating,
		TrendingScoreWeb:         r.trendingWeb,
		TrendingScoreSocial:      r.trendingSocial,
		DataLastScrapedAt:        r.scrapedAt,
		CreatedAt:                r.createdAt,
		LastUpdated:              r.lastUpdated,
	}

	for _, c := range []struct {
		name string
		raw  []byte
		into any
	}{
		{"location", r.location, &p.Location},
		{"photos", r.photos, &p.Photos},
		{"reviews", r.reviews, &p.Reviews},
		{"opening_hours", r.openingHours, &p.OpeningHours},
		{"editorial_summary", r.editorial, &p.EditorialSummary},
		{"place_types", r.types, &p.PlaceTypes},
		{"place_features", r.features, &p.PlaceFeatures},
		{"ai_summary", r.summary, &p.AISummary},
	} {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.into); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal %s for %s", c.name, r.id)
		}
	}
	return p, nil
}
