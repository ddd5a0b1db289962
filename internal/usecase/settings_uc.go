package usecase

import (
	"context"
	"fmt"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/repository"
)

var _ SettingsUseCase = (*settingsUC)(nil)

type SettingsUseCase interface {
	Get(ctx context.Context, workspace string) model.Settings
	Update(ctx context.Context, workspace string, s model.Settings) error
}

type settingsUC struct {
	store repository.SettingsStore
}

func NewSettingsUseCase(store repository.SettingsStore) *settingsUC {
	return &settingsUC{store: store}
}

func (u *settingsUC) Get(ctx context.Context, workspace string) model.Settings {
	return u.store.LoadSettings(ctx, workspace)
}

func (u *settingsUC) Update(ctx context.Context, workspace string, s model.Settings) error {
	if s.Theme != "light" && s.Theme != "dark" {
		return fmt.Errorf("%w: theme %q", domain.ErrInvalidArgument, s.Theme)
	}
	if _, ok := model.ParseProvider(string(s.DefaultProvider)); !ok {
		return fmt.Errorf("%w: default provider %q", domain.ErrUnsupportedService, s.DefaultProvider)
	}
	u.store.SaveSettings(ctx, workspace, s)
	return nil
}
