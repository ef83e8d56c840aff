package repositories

import (
	"errors"
	"strings"

	"foodgram_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrIngredientNotFound = errors.New("ingredient not found")

type IngredientRepository interface {
	Search(db *gorm.DB, prefix string) ([]models.Ingredient, error)
	FindByID(db *gorm.DB, id uint) (*models.Ingredient, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]models.Ingredient, error)
	// CreateMissing inserts ingredients, skipping (name, unit) pairs that already exist.
	CreateMissing(db *gorm.DB, ingredients []models.Ingredient) (int64, error)
}

type IngredientRepositoryImpl struct{}

func NewIngredientRepository() IngredientRepository {
	return &IngredientRepositoryImpl{}
}

// likeEscaper escapes LIKE metacharacters with '!' so the pattern is portable
// across postgres, mysql and sqlite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *IngredientRepositoryImpl) Search(db *gorm.DB, prefix string) ([]models.Ingredient, error) {
	q := db.Model(&models.Ingredient{})
	if prefix = models.SearchKey(prefix); prefix != "" {
		q = q.Where("search_name LIKE ? ESCAPE '!'", likeEscaper.Replace(prefix)+"%")
	}

	var ingredients []models.Ingredient
	err := q.Order("name ASC").Order("measurement_unit ASC").Find(&ingredients).Error
	return ingredients, err
}

func (r *IngredientRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

func (r *IngredientRepositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []models.Ingredient
	err := db.Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

func (r *IngredientRepositoryImpl) CreateMissing(db *gorm.DB, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
	return res.RowsAffected, res.Error
}
