package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/repository"
)

var _ ServiceUseCase = (*serviceUC)(nil)

type ServiceUseCase interface {
	List(ctx context.Context, workspace string) []model.AIServiceConfig
	// Upsert replaces the config for cfg.Provider, keeping exactly one
	// config per provider in the set.
	Upsert(ctx context.Context, workspace string, cfg model.AIServiceConfig) error
	// ValidateKey is the pure format check the UI calls before enabling
	// the send action. No I/O.
	ValidateKey(provider, key string) bool
}

type serviceUC struct {
	store repository.ServiceStore
	log   *zerolog.Logger
}

func NewServiceUseCase(store repository.ServiceStore, logger *zerolog.Logger) *serviceUC {
	l := logger.With().Str("component", "ServiceUC").Logger()
	return &serviceUC{store: store, log: &l}
}

func (s *serviceUC) List(ctx context.Context, workspace string) []model.AIServiceConfig {
	return s.store.LoadServices(ctx, workspace)
}

func (s *serviceUC) Upsert(ctx context.Context, workspace string, cfg model.AIServiceConfig) error {
	provider, ok := model.ParseProvider(string(cfg.Provider))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedService, cfg.Provider)
	}
	cfg.Provider = provider
	if !model.ValidateAPIKey(provider, cfg.APIKey) {
		return fmt.Errorf("%w: provider %q", domain.ErrInvalidAPIKey, provider)
	}

	configs := s.store.LoadServices(ctx, workspace)
	replaced := false
	for i := range configs {
		if configs[i].Provider == provider {
			configs[i] = cfg
			replaced = true
			break
		}
	}
	if !replaced {
		configs = append(configs, cfg)
	}
	s.store.SaveServices(ctx, workspace, configs)
	return nil
}

func (s *serviceUC) ValidateKey(provider, key string) bool {
	p, ok := model.ParseProvider(provider)
	if !ok {
		return false
	}
	return model.ValidateAPIKey(p, key)
}
