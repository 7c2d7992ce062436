package model

import (
	"strconv"
	"time"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is one coffee shop record as persisted in coffee_places.
//
// Optional scalars are pointers: nil means the value is unknown (SQL NULL).
type Place struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location Location `json:"location"`

	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`

	// Secondary rating source, never merged with the upstream rating.
	Ring29Rating           *float64 `json:"ring29_rating"`
	Ring29UserRatingsTotal *int     `json:"ring29_user_ratings_total"`

	Photos  []Photo  `json:"photos"`
	Reviews []Review `json:"reviews"`

	Website                  *string           `json:"website"`
	InternationalPhoneNumber *string           `json:"international_phone_number"`
	PriceLevel               *int              `json:"price_level"`
	OpeningHours             *OpeningHours     `json:"opening_hours"`
	GoogleMapsURL            *string           `json:"google_maps_url"`
	BusinessStatus           *string           `json:"business_status"`
	EditorialSummary         *EditorialSummary `json:"editorial_summary"`
	PlaceTypes               []string          `json:"place_types"`
	PlaceFeatures            *PlaceFeatures    `json:"place_features"`

	AISummary *AISummary `json:"ai_summary"`
	AIRating  *string    `json:"ai_rating"`

	TrendingScoreWeb    *float64   `json:"trending_score_web"`
	TrendingScoreSocial *float64   `json:"trending_score_social"`
	DataLastScrapedAt   *time.Time `json:"data_last_scraped_at"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Photo is a migrated photo: the public object storage URL plus upstream metadata.
type Photo struct {
	URL              string   `json:"url"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions"`
}

// Review is a single user review. Reviews are identified by (AuthorName, Time).
type Review struct {
	AuthorName string         `json:"author_name"`
	Rating     float64        `json:"rating"`
	Text       string         `json:"text"`
	Time       int64          `json:"time"`
	Aspects    []AspectRating `json:"aspects,omitempty"`
}

// Key returns the identity used to deduplicate reviews.
func (r Review) Key() string {
	return r.AuthorName + "_" + strconv.FormatInt(r.Time, 10)
}

// AspectRating is an optional per-aspect sub-rating attached to a review.
type AspectRating struct {
	Type   string `json:"type"`
	Rating int    `json:"rating"`
}

// PlaceFeatures is a sparse set of amenity flags. A nil field is unknown,
// which is not the same as false.
type PlaceFeatures struct {
	WheelchairAccessibleEntrance *bool `json:"wheelchair_accessible_entrance,omitempty"`
	CurbsidePickup               *bool `json:"curbside_pickup,omitempty"`
	Delivery                     *bool `json:"delivery,omitempty"`
	DineIn                       *bool `json:"dine_in,omitempty"`
	Reservable                   *bool `json:"reservable,omitempty"`
	ServesBreakfast              *bool `json:"serves_breakfast,omitempty"`
	ServesLunch                  *bool `json:"serves_lunch,omitempty"`
	ServesDinner                 *bool `json:"serves_dinner,omitempty"`
	Takeout                      *bool `json:"takeout,omitempty"`
}

// Empty reports whether no flag is known.
func (f PlaceFeatures) Empty() bool {
	return f == PlaceFeatures{}
}

// OpeningHours mirrors the upstream opening_hours object.
type OpeningHours struct {
	OpenNow           *bool           `json:"open_now,omitempty"`
	Periods           []OpeningPeriod `json:"periods,omitempty"`
	WeekdayText       []string        `json:"weekday_text,omitempty"`
	PermanentlyClosed *bool           `json:"permanently_closed,omitempty"`
}

// OpeningPeriod is one open/close pair. Close is nil for places open 24/7.
type OpeningPeriod struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

// DayTime is a day-of-week (0 = Sunday) and an HHMM time.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
	Date string `json:"date,omitempty"`
}

// EditorialSummary is the upstream short description of a place.
type EditorialSummary struct {
	Language string `json:"language,omitempty"`
	Overview string `json:"overview,omitempty"`
}

// PhotoLog is an audit row describing one uploaded photo object.
type PhotoLog struct {
	ID           string    `json:"id"`
	PlaceID      string    `json:"place_id"`
	StoragePath  string    `json:"storage_path"`
	PublicURL    string    `json:"public_url"`
	DisplayOrder int       `json:"display_order"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	CreatedAt    time.Time `json:"created_at"`
}
