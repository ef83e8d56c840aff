package app

import (
	"context"

	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services"

	"gorm.io/gorm"
)

// seedCatalog loads the ingredient fixture when one is configured. Existing
// (name, unit) pairs are left untouched, so it is safe on every start.
func seedCatalog(ctx context.Context, db *gorm.DB, fixturePath string) error {
	if fixturePath == "" {
		logger.Info("catalog.fixture_path is not set. Skipping ingredient seeding.")
		return nil
	}

	svc := services.NewIngredientService(repositories.NewIngredientRepository())
	_, err := svc.SeedFromFile(ctx, db.WithContext(ctx), fixturePath)
	return err
}
