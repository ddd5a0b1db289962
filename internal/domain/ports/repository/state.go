package repository

import (
	"context"
	"time"

	"notegraph-ai/internal/domain/model"
)

// The four workspace slots. Each Load returns a documented default when the
// slot is absent or holds unparsable data; it never surfaces an error for
// those cases. Each Save is best-effort: failures are recorded on the
// observability channel, not propagated, so a failing store never breaks a
// working session.

// GraphStore persists the knowledge graph slot.
type GraphStore interface {
	LoadGraph(ctx context.Context, workspace string) *model.Graph
	SaveGraph(ctx context.Context, workspace string, g *model.Graph)
}

// HistoryStore persists the chat session list slot.
type HistoryStore interface {
	LoadSessions(ctx context.Context, workspace string) []*model.ChatSession
	SaveSessions(ctx context.Context, workspace string, sessions []*model.ChatSession)
}

// ServiceStore persists the AI service config slot. Implementations hold
// API keys encrypted at rest.
type ServiceStore interface {
	LoadServices(ctx context.Context, workspace string) []model.AIServiceConfig
	SaveServices(ctx context.Context, workspace string, configs []model.AIServiceConfig)
}

// SettingsStore persists the app settings slot.
type SettingsStore interface {
	LoadSettings(ctx context.Context, workspace string) model.Settings
	SaveSettings(ctx context.Context, workspace string, s model.Settings)
}

// StateStore is the full slot set.
type StateStore interface {
	GraphStore
	HistoryStore
	ServiceStore
	SettingsStore
}

// Exporter hands out raw slot blobs for durable snapshotting, plus the set
// of workspaces written since the last drain.
type Exporter interface {
	Export(ctx context.Context, workspace string) map[string][]byte
	DrainDirty() []string
}

// SnapshotRepository is the durable (database) side of autosave. LoadLatest
// and ListWorkspaces feed the boot-time restore of empty slot stores.
type SnapshotRepository interface {
	Save(ctx context.Context, workspace, slot string, payload []byte) error
	LoadLatest(ctx context.Context, workspace, slot string) ([]byte, error)
	ListWorkspaces(ctx context.Context) ([]string, error)
}

// RateLimiter bounds chat sends per workspace.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
