package usecase

import (
	"context"
	"errors"
	"testing"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
)

func TestAddNodeAndConnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStateStore()
	uc := NewGraphUseCase(store, testLogger())

	a, err := uc.AddNode(ctx, "ws", "Mathematics", "the study of structure", []string{"science"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := uc.AddNode(ctx, "ws", "Physics", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.AddNode(ctx, "ws", "   ", "", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("blank title: %v", err)
	}

	if err := uc.Connect(ctx, "ws", a.ID, b.ID, "informs"); err != nil {
		t.Fatal(err)
	}
	if err := uc.Connect(ctx, "ws", a.ID, "nope", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown target: %v", err)
	}

	g := uc.Load(ctx, "ws")
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("graph = %+v", g)
	}
	if g.Edges[0].Label != "informs" {
		t.Errorf("edge label = %q", g.Edges[0].Label)
	}
}

func TestCreateNodesFromTopics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStateStore()
	uc := NewGraphUseCase(store, testLogger())

	origin, _ := uc.AddNode(ctx, "ws", "Graph Theory", "", nil)
	existing, _ := uc.AddNode(ctx, "ws", "Topology", "", nil)

	created, err := uc.CreateNodesFromTopics(ctx, "ws", origin.ID, []string{"Topology", "Combinatorics", "", "Set Theory"})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %+v", created)
	}

	g := uc.Load(ctx, "ws")
	if len(g.Nodes) != 4 {
		t.Errorf("node count = %d, want 4", len(g.Nodes))
	}
	// One edge to the existing node, one per created node.
	if len(g.Edges) != 3 {
		t.Errorf("edge count = %d, want 3", len(g.Edges))
	}
	foundExisting := false
	for _, e := range g.Edges {
		if e.SourceID != origin.ID {
			t.Errorf("edge source = %q, want origin", e.SourceID)
		}
		if e.TargetID == existing.ID {
			foundExisting = true
		}
	}
	if !foundExisting {
		t.Error("existing node not linked")
	}

	if _, err := uc.CreateNodesFromTopics(ctx, "ws", "missing", []string{"X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing origin: %v", err)
	}
}

func TestServiceUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStateStore()
	uc := NewServiceUseCase(store, testLogger())

	cfg := model.AIServiceConfig{
		Provider: model.ProviderOpenAI,
		APIKey:   "sk-abcdefghijklmnopqrstu",
		Model:    "gpt-4o-mini",
		Enabled:  true,
	}
	if err := uc.Upsert(ctx, "ws", cfg); err != nil {
		t.Fatal(err)
	}

	// Second upsert for the same provider replaces, never duplicates.
	cfg.Model = "gpt-4o"
	if err := uc.Upsert(ctx, "ws", cfg); err != nil {
		t.Fatal(err)
	}
	configs := uc.List(ctx, "ws")
	if len(configs) != 1 || configs[0].Model != "gpt-4o" {
		t.Fatalf("configs = %+v", configs)
	}

	bad := cfg
	bad.Provider = model.Provider("claude")
	if err := uc.Upsert(ctx, "ws", bad); !errors.Is(err, domain.ErrUnsupportedService) {
		t.Errorf("unknown provider: %v", err)
	}

	short := cfg
	short.APIKey = "sk-short"
	if err := uc.Upsert(ctx, "ws", short); !errors.Is(err, domain.ErrInvalidAPIKey) {
		t.Errorf("short key: %v", err)
	}
}

func TestServiceValidateKey(t *testing.T) {
	t.Parallel()

	uc := NewServiceUseCase(newMemStateStore(), testLogger())
	if !uc.ValidateKey("openai", "sk-abcdefghijklmnopqrstu") {
		t.Error("valid openai key rejected")
	}
	if uc.ValidateKey("anthropic", "sk-abcdefghijklmnopqrstu") {
		t.Error("unknown provider accepted")
	}
}

func TestSettingsUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStateStore()
	uc := NewSettingsUseCase(store)

	if got := uc.Get(ctx, "ws"); got != model.DefaultSettings() {
		t.Errorf("default settings = %+v", got)
	}

	want := model.Settings{Theme: "dark", Autosave: false, DefaultProvider: model.ProviderGemini}
	if err := uc.Update(ctx, "ws", want); err != nil {
		t.Fatal(err)
	}
	if got := uc.Get(ctx, "ws"); got != want {
		t.Errorf("settings = %+v", got)
	}

	if err := uc.Update(ctx, "ws", model.Settings{Theme: "neon", DefaultProvider: model.ProviderOpenAI}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("bad theme: %v", err)
	}
	if err := uc.Update(ctx, "ws", model.Settings{Theme: "dark", DefaultProvider: "claude"}); !errors.Is(err, domain.ErrUnsupportedService) {
		t.Errorf("bad provider: %v", err)
	}
}
