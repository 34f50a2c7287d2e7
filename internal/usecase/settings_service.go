package usecase

import (
	"context"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
)

// SettingsService reads and writes the per-company integration settings.
type SettingsService struct {
	settings storage.SettingsRepo
}

// NewSettingsService creates a settings service
func NewSettingsService(settings storage.SettingsRepo) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get loads the settings; a company that never saved any gets zero values.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.settings.Get(ctx)
}

// Update replaces the settings.
func (s *SettingsService) Update(ctx context.Context, settings model.Settings) error {
	return s.settings.Save(ctx, settings)
}
