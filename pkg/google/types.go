package google

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LatLng is a coordinate pair as used by the Places API.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry wraps a place location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// NearbyRequest is one Nearby Search call. When PageToken is set the other
// parameters are ignored.
type NearbyRequest struct {
	Location  LatLng
	Radius    int
	Type      string
	Keyword   string
	PageToken string
}

// NearbyResponse is one page of Nearby Search results.
type NearbyResponse struct {
	Results       []SearchResult `json:"results"`
	NextPageToken string         `json:"next_page_token,omitempty"`
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}

// SearchResult is the summary record returned by Nearby Search.
type SearchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Geometry         Geometry `json:"geometry"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
}

type detailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// PlaceDetails is the Place Details result. Pointer fields are nil when the
// API omitted them.
type PlaceDetails struct {
	PlaceID                  string            `json:"place_id"`
	Name                     string            `json:"name"`
	FormattedAddress         string            `json:"formatted_address"`
	Geometry                 *Geometry         `json:"geometry,omitempty"`
	Rating                   *float64          `json:"rating,omitempty"`
	UserRatingsTotal         *int              `json:"user_ratings_total,omitempty"`
	Photos                   []PhotoRef        `json:"photos,omitempty"`
	Reviews                  []Review          `json:"reviews,omitempty"`
	Website                  *string           `json:"website,omitempty"`
	InternationalPhoneNumber *string           `json:"international_phone_number,omitempty"`
	PriceLevel               *int              `json:"price_level,omitempty"`
	OpeningHours             *OpeningHours     `json:"opening_hours,omitempty"`
	URL                      *string           `json:"url,omitempty"`
	BusinessStatus           *string           `json:"business_status,omitempty"`
	EditorialSummary         *EditorialSummary `json:"editorial_summary,omitempty"`
	Types                    []string          `json:"types,omitempty"`

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

// PhotoRef points at a photo served by the photo endpoint.
type PhotoRef struct {
	PhotoReference   string   `json:"photo_reference"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions"`
}

// PhotoData is a downloaded photo.
type PhotoData struct {
	Bytes       []byte
	ContentType string
}

// Review is a user review from Place Details.
type Review struct {
	AuthorName              string         `json:"author_name"`
	Rating                  float64        `json:"rating"`
	Text                    string         `json:"text"`
	Time                    ReviewTime     `json:"time"`
	RelativeTimeDescription string         `json:"relative_time_description,omitempty"`
	Language                string         `json:"language,omitempty"`
	Aspects                 []AspectRating `json:"aspects,omitempty"`
}

// AspectRating is a per-aspect sub-rating.
type AspectRating struct {
	Type   string `json:"type"`
	Rating int    `json:"rating"`
}

// ReviewTime is a review timestamp in Unix seconds. The API normally sends a
// number, but numeric strings are accepted too. Decoding never fails: a value
// that is not an integer leaves Valid false and keeps the raw text.
type ReviewTime struct {
	Seconds int64
	Valid   bool
	Raw     string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ReviewTime) UnmarshalJSON(b []byte) error {
	*t = ReviewTime{Raw: string(b)}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil //nolint:nilerr
		}
		s = strings.TrimSpace(str)
		t.Raw = str
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Seconds, t.Valid = n, true
		return nil
	}
	// Whole-valued floats such as 1.7e9 still identify a second.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		t.Seconds, t.Valid = int64(f), true
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t ReviewTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return json.Marshal(t.Raw)
	}
	return []byte(strconv.FormatInt(t.Seconds, 10)), nil
}

// OpeningHours is the opening_hours object.
type OpeningHours struct {
	OpenNow           *bool           `json:"open_now,omitempty"`
	Periods           []OpeningPeriod `json:"periods,omitempty"`
	WeekdayText       []string        `json:"weekday_text,omitempty"`
	PermanentlyClosed *bool           `json:"permanently_closed,omitempty"`
}

// OpeningPeriod is an open/close pair.
type OpeningPeriod struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

// DayTime is a day-of-week and HHMM time.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
	Date string `json:"date,omitempty"`
}

// EditorialSummary is the editorial_summary object.
type EditorialSummary struct {
	Language string `json:"language,omitempty"`
	Overview string `json:"overview,omitempty"`
}
