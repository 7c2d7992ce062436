package enrich

import (
	"context"
	"time"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
	"github.com/vilniuscoffee/coffee-finder/pkg/anthropic"
	"github.com/vilniuscoffee/coffee-finder/pkg/openai"
)

type savedSummary struct {
	id      string
	summary []byte
	rating  string
	at      time.Time
}

type mockStore struct {
	places    map[string]*model.Place
	getErr    error
	updateErr error
	saved     []savedSummary
}

func (m *mockStore) GetPlace(_ context.Context, id string) (*model.Place, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.places[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) UpdateAISummary(_ context.Context, id string, summary []byte, rating string, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.saved = append(m.saved, savedSummary{id: id, summary: summary, rating: rating, at: at})
	return nil
}

type mockGenerator struct {
	reply   string
	err     error
	prompts []Prompt
}

func (m *mockGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	m.prompts = append(m.prompts, p)
	return m.reply, m.err
}

type mockOpenAI struct {
	resp *openai.CompletionResponse
	err  error
	req  openai.CompletionRequest
}

func (m *mockOpenAI) CreateJSONCompletion(_ context.Context, req openai.CompletionRequest) (*openai.CompletionResponse, error) {
	m.req = req
	return m.resp, m.err
}

type mockAnthropic struct {
	resp *anthropic.CompletionResponse
	err  error
	req  anthropic.CompletionRequest
}

func (m *mockAnthropic) Complete(_ context.Context, req anthropic.CompletionRequest) (*anthropic.CompletionResponse, error) {
	m.req = req
	return m.resp, m.err
}
