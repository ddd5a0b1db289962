// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
)

// memStateStore is a small in-memory slot store used by unit tests. Like
// the real store, Load returns defaults and Save swallows nothing because
// nothing can fail here.
type memStateStore struct {
	mu       sync.Mutex
	graphs   map[string]*model.Graph
	sessions map[string][]*model.ChatSession
	services map[string][]model.AIServiceConfig
	settings map[string]model.Settings

	saveCount int
}

func newMemStateStore() *memStateStore {
	return &memStateStore{
		graphs:   map[string]*model.Graph{},
		sessions: map[string][]*model.ChatSession{},
		services: map[string][]model.AIServiceConfig{},
		settings: map[string]model.Settings{},
	}
}

func (m *memStateStore) LoadGraph(_ context.Context, ws string) *model.Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.graphs[ws]; ok {
		return g
	}
	return model.NewGraph()
}

func (m *memStateStore) SaveGraph(_ context.Context, ws string, g *model.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphs[ws] = g
	m.saveCount++
}

func (m *memStateStore) LoadSessions(_ context.Context, ws string) []*model.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[ws]
}

func (m *memStateStore) SaveSessions(_ context.Context, ws string, sessions []*model.ChatSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[ws] = sessions
	m.saveCount++
}

func (m *memStateStore) LoadServices(_ context.Context, ws string) []model.AIServiceConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.services[ws]
}

func (m *memStateStore) SaveServices(_ context.Context, ws string, configs []model.AIServiceConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[ws] = configs
	m.saveCount++
}

func (m *memStateStore) LoadSettings(_ context.Context, ws string) model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[ws]; ok {
		return s
	}
	return model.DefaultSettings()
}

func (m *memStateStore) SaveSettings(_ context.Context, ws string, s model.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[ws] = s
	m.saveCount++
}

// fakeDispatcher records dispatches and returns a scripted response.
type fakeDispatcher struct {
	mu       sync.Mutex
	calls    int
	lastCfg  model.AIServiceConfig
	lastMsgs []adapter.Message
	response model.AIResponse
	err      error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, cfg model.AIServiceConfig, msgs []adapter.Message) (model.AIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastCfg = cfg
	f.lastMsgs = msgs
	if f.err != nil {
		return model.AIResponse{}, f.err
	}
	return f.response, nil
}

// fakeLimiter scripts the rate-limit outcome and records the key it saw.
type fakeLimiter struct {
	allow   bool
	err     error
	lastKey string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.lastKey = key
	return f.allow, f.err
}
