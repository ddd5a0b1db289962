package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/repository"
	"notegraph-ai/internal/infra/metrics"
	"notegraph-ai/internal/infra/security"
)

var _ repository.StateStore = (*SlotStore)(nil)
var _ repository.Exporter = (*SlotStore)(nil)

const (
	SlotGraph    = "graph"
	SlotHistory  = "chat_history"
	SlotServices = "services"
	SlotSettings = "settings"
)

// Slots lists every slot name, in the order snapshots write them.
var Slots = []string{SlotGraph, SlotHistory, SlotServices, SlotSettings}

// SlotStore keeps each workspace slot as one JSON blob under a fixed key,
// written atomically by SET. Load returns the documented default when a
// slot is absent or unparsable; Save is best-effort and never reports
// failure to the caller — a failing store must not break a working session.
type SlotStore struct {
	client Client
	cipher *security.Cipher // encrypts stored API keys; nil stores plaintext
	ttl    time.Duration    // 0 means no expiry
	log    zerolog.Logger

	mu    sync.Mutex
	dirty map[string]struct{}
}

func NewSlotStore(client Client, cipher *security.Cipher, ttl time.Duration, logger *zerolog.Logger) *SlotStore {
	l := logger.With().Str("component", "SlotStore").Logger()
	return &SlotStore{
		client: client,
		cipher: cipher,
		ttl:    ttl,
		log:    l,
		dirty:  make(map[string]struct{}),
	}
}

func slotKey(workspace, slot string) string {
	return fmt.Sprintf("slot:%s:%s", workspace, slot)
}

// load fills v from the slot blob. Returns false on miss or corrupt data;
// corrupt blobs are counted, missing ones are normal.
func (s *SlotStore) load(ctx context.Context, workspace, slot string, v interface{}) bool {
	data, err := s.client.Get(ctx, slotKey(workspace, slot))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.log.Warn().Err(err).Str("slot", slot).Str("workspace", workspace).Msg("slot read failed; using default")
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		metrics.IncSlotCorrupt(slot)
		s.log.Warn().Err(err).Str("slot", slot).Str("workspace", workspace).Msg("slot corrupt; using default")
		return false
	}
	return true
}

// save marshals v into the slot. Failures are logged and counted, never
// returned.
func (s *SlotStore) save(ctx context.Context, workspace, slot string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.IncSlotSaveFailure(slot)
		s.log.Error().Err(err).Str("slot", slot).Str("workspace", workspace).Msg("slot marshal failed")
		return
	}
	if err := s.client.Set(ctx, slotKey(workspace, slot), data, s.ttl); err != nil {
		metrics.IncSlotSaveFailure(slot)
		s.log.Error().Err(err).Str("slot", slot).Str("workspace", workspace).Msg("slot write failed")
		return
	}
	s.markDirty(workspace)
}

// ---- graph ----

func (s *SlotStore) LoadGraph(ctx context.Context, workspace string) *model.Graph {
	g := model.NewGraph()
	if s.load(ctx, workspace, SlotGraph, g) {
		if g.Nodes == nil {
			g.Nodes = []model.Node{}
		}
		if g.Edges == nil {
			g.Edges = []model.Edge{}
		}
	}
	return g
}

func (s *SlotStore) SaveGraph(ctx context.Context, workspace string, g *model.Graph) {
	s.save(ctx, workspace, SlotGraph, g)
}

// ---- chat history ----

func (s *SlotStore) LoadSessions(ctx context.Context, workspace string) []*model.ChatSession {
	sessions := []*model.ChatSession{}
	s.load(ctx, workspace, SlotHistory, &sessions)
	return sessions
}

func (s *SlotStore) SaveSessions(ctx context.Context, workspace string, sessions []*model.ChatSession) {
	s.save(ctx, workspace, SlotHistory, sessions)
}

// ---- service configs ----

func (s *SlotStore) LoadServices(ctx context.Context, workspace string) []model.AIServiceConfig {
	configs := []model.AIServiceConfig{}
	if !s.load(ctx, workspace, SlotServices, &configs) {
		return configs
	}
	if s.cipher == nil {
		return configs
	}
	for i := range configs {
		key, err := s.cipher.Decrypt(configs[i].APIKey)
		if err != nil {
			// Undecryptable key degrades to empty; validation catches it
			// before any dispatch.
			s.log.Warn().Str("provider", string(configs[i].Provider)).Msg("stored api key undecryptable")
			key = ""
		}
		configs[i].APIKey = key
	}
	return configs
}

func (s *SlotStore) SaveServices(ctx context.Context, workspace string, configs []model.AIServiceConfig) {
	stored := make([]model.AIServiceConfig, len(configs))
	copy(stored, configs)
	if s.cipher != nil {
		for i := range stored {
			enc, err := s.cipher.Encrypt(stored[i].APIKey)
			if err != nil {
				metrics.IncSlotSaveFailure(SlotServices)
				s.log.Error().Err(err).Msg("api key encryption failed; slot not written")
				return
			}
			stored[i].APIKey = enc
		}
	}
	s.save(ctx, workspace, SlotServices, stored)
}

// ---- settings ----

func (s *SlotStore) LoadSettings(ctx context.Context, workspace string) model.Settings {
	settings := model.DefaultSettings()
	s.load(ctx, workspace, SlotSettings, &settings)
	return settings
}

func (s *SlotStore) SaveSettings(ctx context.Context, workspace string, settings model.Settings) {
	s.save(ctx, workspace, SlotSettings, settings)
}

// ---- snapshot export ----

func (s *SlotStore) markDirty(workspace string) {
	s.mu.Lock()
	s.dirty[workspace] = struct{}{}
	s.mu.Unlock()
}

// DrainDirty returns workspaces written since the last drain and resets
// the set.
func (s *SlotStore) DrainDirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for ws := range s.dirty {
		out = append(out, ws)
	}
	s.dirty = make(map[string]struct{})
	return out
}

// RestoreFrom fills absent slots from the latest durable snapshots, so a
// flushed Redis comes back up with the last autosaved state. Present slots
// are left alone and restored slots are not marked dirty; they are already
// what the snapshot holds. Returns the number of slots written.
func (s *SlotStore) RestoreFrom(ctx context.Context, snapshots repository.SnapshotRepository) (int, error) {
	workspaces, err := snapshots.ListWorkspaces(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, ws := range workspaces {
		for _, slot := range Slots {
			if _, err := s.client.Get(ctx, slotKey(ws, slot)); !errors.Is(err, ErrMiss) {
				continue
			}
			payload, err := snapshots.LoadLatest(ctx, ws, slot)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					s.log.Warn().Err(err).Str("workspace", ws).Str("slot", slot).Msg("snapshot read failed; slot stays empty")
				}
				continue
			}
			if err := s.client.Set(ctx, slotKey(ws, slot), payload, s.ttl); err != nil {
				s.log.Warn().Err(err).Str("workspace", ws).Str("slot", slot).Msg("slot restore write failed")
				continue
			}
			restored++
		}
	}
	if restored > 0 {
		s.log.Info().Int("slots", restored).Msg("slots restored from snapshots")
	}
	return restored, nil
}

// Export returns the raw blob of every present slot for a workspace.
// Service-config blobs stay encrypted, so snapshots never hold plaintext
// keys.
func (s *SlotStore) Export(ctx context.Context, workspace string) map[string][]byte {
	out := make(map[string][]byte, len(Slots))
	for _, slot := range Slots {
		data, err := s.client.Get(ctx, slotKey(workspace, slot))
		if err != nil {
			continue
		}
		out[slot] = []byte(data)
	}
	return out
}
