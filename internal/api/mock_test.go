package api

import (
	"context"
	"time"

	"github.com/vilniuscoffee/coffee-finder/internal/enrich"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

type mockStore struct {
	places   []model.Place
	listOpts store.ListOptions
	listErr  error
	getErr   error
	pingErr  error
	saved    map[string][]byte
}

func (m *mockStore) find(match func(model.Place) bool) (*model.Place, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.places {
		if match(p) {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetPlace(_ context.Context, id string) (*model.Place, error) {
	return m.find(func(p model.Place) bool { return p.ID == id })
}

func (m *mockStore) GetPlaceBySlug(_ context.Context, slug string) (*model.Place, error) {
	return m.find(func(p model.Place) bool { return p.Slug == slug })
}

func (m *mockStore) ListPlaces(_ context.Context, opts store.ListOptions) ([]model.Place, error) {
	m.listOpts = opts
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.places, nil
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) UpdateAISummary(_ context.Context, id string, summary []byte, _ string, _ time.Time) error {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[id] = summary
	return nil
}

type mockEnricher struct {
	summary *model.AISummary
	err     error
	calls   []string
}

func (m *mockEnricher) Enrich(_ context.Context, placeID string) (*model.AISummary, error) {
	m.calls = append(m.calls, placeID)
	return m.summary, m.err
}

type staticGenerator string

func (g staticGenerator) Generate(context.Context, enrich.Prompt) (string, error) {
	return string(g), nil
}
