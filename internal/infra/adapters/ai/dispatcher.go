package ai

import (
	"context"
	"fmt"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/infra/metrics"
)

var _ adapter.ChatDispatcher = (*Dispatcher)(nil)

// Dispatcher selects the provider matching a service config and forwards
// the call with the config's key and model. Configs are loaded from
// untrusted persisted state, so the unknown-provider branch stays guarded
// even though the enumerated type should make it unreachable.
type Dispatcher struct {
	byProvider map[model.Provider]adapter.ChatProvider
}

func NewDispatcher(providers ...adapter.ChatProvider) *Dispatcher {
	by := make(map[model.Provider]adapter.ChatProvider, len(providers))
	for _, p := range providers {
		if p != nil {
			by[p.Name()] = p
		}
	}
	return &Dispatcher{byProvider: by}
}

func (d *Dispatcher) Dispatch(ctx context.Context, cfg model.AIServiceConfig, messages []adapter.Message) (model.AIResponse, error) {
	if len(messages) == 0 {
		return model.AIResponse{}, fmt.Errorf("%w: empty message list", domain.ErrInvalidArgument)
	}
	if !cfg.Enabled {
		return model.AIResponse{}, fmt.Errorf("%w: service %q is disabled", domain.ErrInvalidArgument, cfg.Provider)
	}

	p, ok := d.byProvider[cfg.Provider]
	if !ok {
		return model.AIResponse{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedService, cfg.Provider)
	}

	// Key format check before any network call.
	if !model.ValidateAPIKey(cfg.Provider, cfg.APIKey) {
		return model.AIResponse{}, fmt.Errorf("%w: provider %q", domain.ErrInvalidAPIKey, cfg.Provider)
	}

	// Token accounting is best-effort; a failed count never blocks a send.
	if n, err := p.CountTokens(ctx, cfg.APIKey, cfg.Model, messages); err == nil {
		metrics.ObservePromptTokens(string(cfg.Provider), n)
	}

	return p.Chat(ctx, cfg.APIKey, cfg.Model, messages)
}
