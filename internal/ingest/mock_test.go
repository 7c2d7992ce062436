package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

// mockStore is an in-memory Store that also answers slug lookups and
// records photo audit rows.
type mockStore struct {
	mu        sync.Mutex
	places    map[string]*model.Place
	upserted  []*model.Place
	photoLogs []model.PhotoLog

	getErr    map[string]error
	upsertErr map[string]error
	slugErr   error
	logErr    error
}

func newMockStore(places ...*model.Place) *mockStore {
	m := &mockStore{
		places:    make(map[string]*model.Place),
		getErr:    make(map[string]error),
		upsertErr: make(map[string]error),
	}
	for _, p := range places {
		m.places[p.ID] = p
	}
	return m
}

func (m *mockStore) GetPlace(_ context.Context, id string) (*model.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[id]; err != nil {
		return nil, err
	}
	p, ok := m.places[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) UpsertPlace(_ context.Context, p *model.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.upsertErr[p.ID]; err != nil {
		return err
	}
	m.upserted = append(m.upserted, p)
	m.places[p.ID] = p
	return nil
}

func (m *mockStore) SlugOwner(_ context.Context, slug string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugErr != nil {
		return "", false, m.slugErr
	}
	for _, p := range m.places {
		if p.Slug == slug {
			return p.ID, true, nil
		}
	}
	return "", false, nil
}

func (m *mockStore) LogPhoto(_ context.Context, entry model.PhotoLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logErr != nil {
		return m.logErr
	}
	m.photoLogs = append(m.photoLogs, entry)
	return nil
}

// mockObjects is an in-memory objstore.Store.
type mockObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  map[string]error
	noURL   bool
}

func newMockObjects() *mockObjects {
	return &mockObjects{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		putErr:  make(map[string]error),
	}
}

func (m *mockObjects) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.putErr[key]; err != nil {
		return err
	}
	m.objects[key] = body
	m.types[key] = contentType
	return nil
}

func (m *mockObjects) PublicURL(key string) (string, error) {
	if m.noURL {
		return "", errors.New("objstore: public url not configured")
	}
	return "https://photos.example.com/" + key, nil
}

// mockPhotoSource serves photos by reference.
type mockPhotoSource struct {
	photos map[string]*google.PhotoData
	errs   map[string]error
	calls  []string
}

func (m *mockPhotoSource) Photo(_ context.Context, reference string, _ int) (*google.PhotoData, error) {
	m.calls = append(m.calls, reference)
	if err := m.errs[reference]; err != nil {
		return nil, err
	}
	if p, ok := m.photos[reference]; ok {
		return p, nil
	}
	return &google.PhotoData{Bytes: []byte("jpeg-bytes"), ContentType: "image/jpeg"}, nil
}

// mockMigrator returns a fixed photo set.
type mockMigrator struct {
	photos []model.Photo
	calls  int
}

func (m *mockMigrator) Migrate(_ context.Context, _ string, _ []google.PhotoRef) []model.Photo {
	m.calls++
	return m.photos
}
