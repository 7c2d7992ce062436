package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// DetailsFields is the field list requested from Place Details.
var DetailsFields = []string{
	"place_id", "name", "formatted_address", "geometry", "rating", "user_ratings_total", "photos", "reviews",
	"website", "international_phone_number", "price_level", "opening_hours", "url",
	"business_status", "editorial_summary", "types",
	"wheelchair_accessible_entrance", "curbside_pickup", "delivery", "dine_in",
	"reservable", "serves_breakfast", "serves_lunch", "serves_dinner", "takeout",
}

// Client performs Google Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error)
	Details(ctx context.Context, placeID string, fields []string) (*PlaceDetails, error)
	Photo(ctx context.Context, reference string, maxWidth int) (*PhotoData, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client. The key must be a
// server-side key without referer restrictions.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PhotoURL builds the photo endpoint URL for a reference.
func (c *httpClient) PhotoURL(reference string, maxWidth int) string {
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(maxWidth))
	q.Set("photoreference", reference)
	q.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + q.Encode()
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	if req.PageToken != "" {
		// A page token carries the original query; Google rejects extra params
		// that disagree with it.
		q.Set("pagetoken", req.PageToken)
	} else {
		q.Set("location", formatLatLng(req.Location))
		q.Set("radius", strconv.Itoa(req.Radius))
		if req.Type != "" {
			q.Set("type", req.Type)
		}
		if req.Keyword != "" {
			q.Set("keyword", req.Keyword)
		}
	}

	var result NearbyResponse
	if err := c.getJSON(ctx, "/nearbysearch/json", q, &result); err != nil {
		return nil, eris.Wrap(err, "google: nearby search")
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, eris.Wrap(err, "google: nearby search")
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string, fields []string) (*PlaceDetails, error) {
	if len(fields) == 0 {
		fields = DetailsFields
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", strings.Join(fields, ","))
	q.Set("key", c.apiKey)

	var result detailsResponse
	if err := c.getJSON(ctx, "/details/json", q, &result); err != nil {
		return nil, eris.Wrapf(err, "google: details %s", placeID)
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, eris.Wrapf(err, "google: details %s", placeID)
	}
	if result.Result.PlaceID == "" {
		result.Result.PlaceID = placeID
	}
	return &result.Result, nil
}

func (c *httpClient) Photo(ctx context.Context, reference string, maxWidth int) (*PhotoData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PhotoURL(reference, maxWidth), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create photo request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: fetch photo")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read photo")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return &PhotoData{
		Bytes:       body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 500)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

// checkStatus maps the API-level status field to an error. OK and
// ZERO_RESULTS are both successful responses.
func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	}
	if message != "" {
		return eris.Errorf("api status %s: %s", status, message)
	}
	return eris.Errorf("api status %s", status)
}

// StatusError is returned when the API answers with a non-200 HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return "google: unexpected status " + strconv.Itoa(e.StatusCode) + ": " + e.Body
}

func formatLatLng(l LatLng) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
