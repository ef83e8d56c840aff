package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type IngredientService interface {
	// SearchIngredients matches names by case-insensitive prefix; empty returns all.
	SearchIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]dto.IngredientResponse, error)
	GetIngredient(ctx context.Context, db *gorm.DB, id uint) (*dto.IngredientResponse, error)
	// SeedFromFile loads a JSON or CSV catalog, skipping known (name, unit) pairs.
	SeedFromFile(ctx context.Context, db *gorm.DB, path string) (int64, error)
}

type ingredientService struct {
	ingredientRepo repositories.IngredientRepository
}

func NewIngredientService(ingredientRepo repositories.IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepo: ingredientRepo}
}

func (s *ingredientService) SearchIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]dto.IngredientResponse, error) {
	items, err := s.ingredientRepo.Search(db, strings.TrimSpace(prefix))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.IngredientResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ingredientResponse(&it))
	}
	return out, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, db *gorm.DB, id uint) (*dto.IngredientResponse, error) {
	it, err := s.ingredientRepo.FindByID(db, id)
	if err != nil {
		return nil, handleIngredientError(err)
	}
	resp := ingredientResponse(it)
	return &resp, nil
}

func (s *ingredientService) SeedFromFile(ctx context.Context, db *gorm.DB, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var items []models.Ingredient
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		items, err = parseIngredientJSON(f)
	case ".csv":
		items, err = parseIngredientCSV(f)
	default:
		return 0, fmt.Errorf("unsupported fixture format: %s", path)
	}
	if err != nil {
		return 0, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	inserted, err := s.ingredientRepo.CreateMissing(db, items)
	if err != nil {
		return 0, fmt.Errorf("insert ingredients: %w", err)
	}
	logger.CtxInfo(ctx, "Ingredient catalog seeded", "path", path, "read", len(items), "inserted", inserted)
	return inserted, nil
}

func parseIngredientJSON(r io.Reader) ([]models.Ingredient, error) {
	var fixtures []dto.IngredientFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, err
	}

	items := make([]models.Ingredient, 0, len(fixtures))
	for i, fx := range fixtures {
		it, err := newIngredient(fx.Name, fx.MeasurementUnit)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// parseIngredientCSV reads "name,unit" rows without a header.
func parseIngredientCSV(r io.Reader) ([]models.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var items []models.Ingredient
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		it, err := newIngredient(record[0], record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func newIngredient(name, unit string) (models.Ingredient, error) {
	name, unit = strings.TrimSpace(name), strings.TrimSpace(unit)
	if name == "" || unit == "" {
		return models.Ingredient{}, errors.New("name and measurement unit are required")
	}
	return models.Ingredient{Name: name, MeasurementUnit: unit}, nil
}

func ingredientResponse(it *models.Ingredient) dto.IngredientResponse {
	return dto.IngredientResponse{
		ID:              it.ID,
		Name:            it.Name,
		MeasurementUnit: it.MeasurementUnit,
	}
}
