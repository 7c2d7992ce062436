package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func ptr[T any](v T) *T { return &v }

func samplePlace(id, slug string, rating *float64) *model.Place {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Place{
		ID:               id,
		Slug:             slug,
		Name:             "Place " + id,
		Address:          "Pilies g. 10, Vilnius",
		Location:         model.Location{Lat: 54.6851, Lng: 25.2887},
		Rating:           rating,
		UserRatingsTotal: ptr(42),
		Reviews: []model.Review{
			{AuthorName: "Ona", Rating: 5, Text: "Great flat white", Time: 1700000000},
		},
		Website:       ptr("https://example.lt"),
		PlaceTypes:    []string{"cafe"},
		PlaceFeatures: &model.PlaceFeatures{DineIn: ptr(true), Delivery: ptr(false)},
		OpeningHours: &model.OpeningHours{
			WeekdayText: []string{"Monday: 8:00 AM – 6:00 PM"},
			Periods:     []model.OpeningPeriod{{Open: model.DayTime{Day: 1, Time: "0800"}}},
		},
		DataLastScrapedAt: ptr(now),
		CreatedAt:         now,
		LastUpdated:       now,
	}
}

// --- Places ---

func TestSQLite_UpsertAndGetPlace(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := samplePlace("p1", "place-p1-pilies-g-10", ptr(4.7))
	require.NoError(t, st.UpsertPlace(ctx, in))

	got, err := st.GetPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, in.Slug, got.Slug)
	assert.Equal(t, in.Location, got.Location)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.7, *got.Rating, 1e-9)
	assert.Equal(t, 42, *got.UserRatingsTotal)
	assert.Equal(t, in.Reviews, got.Reviews)
	assert.Equal(t, in.PlaceFeatures, got.PlaceFeatures)
	assert.Equal(t, in.OpeningHours, got.OpeningHours)
	assert.Empty(t, got.Photos)
	assert.Nil(t, got.AISummary)
	assert.Nil(t, got.PriceLevel)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.DataLastScrapedAt)
	assert.True(t, in.DataLastScrapedAt.Equal(*got.DataLastScrapedAt))

	bySlug, err := st.GetPlaceBySlug(ctx, "place-p1-pilies-g-10")
	require.NoError(t, err)
	assert.Equal(t, "p1", bySlug.ID)
}

func TestSQLite_GetPlace_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetPlace(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetPlaceBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_UpsertPlace_PreservesCreatedAt(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := samplePlace("p1", "p1-slug", ptr(4.0))
	require.NoError(t, st.UpsertPlace(ctx, first))

	second := samplePlace("p1", "p1-slug", ptr(4.5))
	second.CreatedAt = first.CreatedAt.Add(48 * time.Hour)
	second.LastUpdated = first.LastUpdated.Add(48 * time.Hour)
	second.Name = "Renamed"
	require.NoError(t, st.UpsertPlace(ctx, second))

	got, err := st.GetPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.InDelta(t, 4.5, *got.Rating, 1e-9)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, second.LastUpdated.Equal(got.LastUpdated))
}

func TestSQLite_ListPlaces_OrderAndPaging(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertPlace(ctx, samplePlace("low", "low", ptr(3.9))))
	require.NoError(t, st.UpsertPlace(ctx, samplePlace("unrated", "unrated", nil)))
	require.NoError(t, st.UpsertPlace(ctx, samplePlace("high", "high", ptr(4.9))))

	places, err := st.ListPlaces(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, "high", places[0].ID)
	assert.Equal(t, "low", places[1].ID)
	assert.Equal(t, "unrated", places[2].ID)

	page, err := st.ListPlaces(ctx, ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "low", page[0].ID)
}

func TestSQLite_ListPlaces_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	places, err := st.ListPlaces(context.Background(), ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestSQLite_SlugUnique(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertPlace(ctx, samplePlace("a", "same-slug", nil)))
	err := st.UpsertPlace(ctx, samplePlace("b", "same-slug", nil))
	assert.Error(t, err)
}

func TestSQLite_SlugOwner(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertPlace(ctx, samplePlace("a", "taken", nil)))

	id, found, err := st.SlugOwner(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", id)

	_, found, err = st.SlugOwner(ctx, "free")
	require.NoError(t, err)
	assert.False(t, found)
}

// --- AI summary ---

func TestSQLite_UpdateAISummary(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertPlace(ctx, samplePlace("p1", "p1", nil)))

	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	summary := []byte(`{"place_name":"Place p1","summary_for_display":"Bright corner cafe.","chatgpt_rating":"4/5"}`)
	require.NoError(t, st.UpdateAISummary(ctx, "p1", summary, "4/5", at))

	got, err := st.GetPlace(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.AISummary)
	assert.Equal(t, "Bright corner cafe.", got.AISummary.SummaryForDisplay)
	require.NotNil(t, got.AIRating)
	assert.Equal(t, "4/5", *got.AIRating)
	assert.True(t, at.Equal(got.LastUpdated))
}

func TestSQLite_UpdateAISummary_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateAISummary(context.Background(), "ghost", []byte(`{}`), "", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Photo log ---

func TestSQLite_LogPhoto(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entry := model.PhotoLog{
		PlaceID:      "p1",
		StoragePath:  "p1/0.jpg",
		PublicURL:    "https://cdn.example.com/p1/0.jpg",
		DisplayOrder: 0,
		Width:        1024,
		Height:       768,
	}
	require.NoError(t, st.LogPhoto(ctx, entry))
	require.NoError(t, st.LogPhoto(ctx, entry), "the log is append-only")

	var n int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM place_photos WHERE place_id = ?`, "p1").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}
