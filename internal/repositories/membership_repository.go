package repositories

import (
	"errors"

	"foodgram_backend/internal/database"
	"foodgram_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMembershipExists   = errors.New("recipe already in list")
	ErrMembershipNotFound = errors.New("recipe not in list")
)

// IngredientTotal is one aggregated line of a shopping list.
type IngredientTotal struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// CartRecipe names a recipe in a cart together with its author.
type CartRecipe struct {
	ID             uint
	Name           string
	AuthorUsername string
}

// MembershipRepository manages favorites and shopping carts. Both tables share
// one shape and are selected by models.MembershipKind.
type MembershipRepository interface {
	Add(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error
	Remove(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error
	Exists(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) (bool, error)
	// Contains returns which of recipeIDs the user has in the kind's table.
	Contains(db *gorm.DB, kind models.MembershipKind, userID uint, recipeIDs []uint) (map[uint]bool, error)

	IngredientTotals(db *gorm.DB, userID uint) ([]IngredientTotal, error)
	CartRecipes(db *gorm.DB, userID uint) ([]CartRecipe, error)
}

type MembershipRepositoryImpl struct{}

func NewMembershipRepository() MembershipRepository {
	return &MembershipRepositoryImpl{}
}

func (r *MembershipRepositoryImpl) Add(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error {
	if err := db.Create(kind.Row(userID, recipeID)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrMembershipExists
		}
		return err
	}
	return nil
}

func (r *MembershipRepositoryImpl) Remove(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error {
	res := db.Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(kind.Row(0, 0))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (r *MembershipRepositoryImpl) Exists(db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) (bool, error) {
	var count int64
	err := db.Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (r *MembershipRepositoryImpl) Contains(db *gorm.DB, kind models.MembershipKind, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return found, nil
	}

	var ids []uint
	err := db.Table(kind.Table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// IngredientTotals sums amounts over every recipe in the user's cart, grouped
// by ingredient name and unit and ordered by name.
func (r *MembershipRepositoryImpl) IngredientTotals(db *gorm.DB, userID uint) ([]IngredientTotal, error) {
	var totals []IngredientTotal
	err := db.Table("shopping_carts AS sc").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total").
		Joins("JOIN recipe_ingredients AS ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC").
		Scan(&totals).Error
	return totals, err
}

func (r *MembershipRepositoryImpl) CartRecipes(db *gorm.DB, userID uint) ([]CartRecipe, error) {
	var recipes []CartRecipe
	err := db.Table("shopping_carts AS sc").
		Select("r.id AS id, r.name AS name, u.username AS author_username").
		Joins("JOIN recipes AS r ON r.id = sc.recipe_id").
		Joins("JOIN users AS u ON u.id = r.author_id").
		Where("sc.user_id = ?", userID).
		Order("r.name ASC, r.id ASC").
		Scan(&recipes).Error
	return recipes, err
}
