package repositories

import (
	"errors"

	"foodgram_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeFilter narrows recipe listings. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID       uint
	FavoritedBy    uint
	NotFavoritedBy uint
	InCartOf       uint
	NotInCartOf    uint
}

type RecipeRepository interface {
	Create(db *gorm.DB, recipe *models.Recipe) error
	FindByID(db *gorm.DB, id uint) (*models.Recipe, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]models.Recipe, error)
	List(db *gorm.DB, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error)
	Update(db *gorm.DB, recipe *models.Recipe) error
	ReplaceIngredients(db *gorm.DB, recipeID uint, items []models.RecipeIngredient) error
	Delete(db *gorm.DB, id uint) error

	ListByAuthor(db *gorm.DB, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(db *gorm.DB, authorIDs []uint) (map[uint]int64, error)
}

type RecipeRepositoryImpl struct{}

func NewRecipeRepository() RecipeRepository {
	return &RecipeRepositoryImpl{}
}

// Create inserts the recipe and its ingredient lines. Call inside a transaction.
func (r *RecipeRepositoryImpl) Create(db *gorm.DB, recipe *models.Recipe) error {
	items := recipe.Ingredients
	recipe.Ingredients = nil
	if err := db.Omit("Author").Create(recipe).Error; err != nil {
		return err
	}
	if err := r.ReplaceIngredients(db, recipe.ID, items); err != nil {
		return err
	}
	recipe.Ingredients = items
	return nil
}

func (r *RecipeRepositoryImpl) detailQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Ingredients.Ingredient")
}

func (r *RecipeRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.detailQuery(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []models.Recipe
	err := db.Where("id IN ?", ids).Find(&recipes).Error
	return recipes, err
}

func (r *RecipeRepositoryImpl) List(db *gorm.DB, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error) {
	q := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.FavoritedBy != 0 {
		q = q.Where("id IN (?)", membersOf(db, models.KindFavorite, filter.FavoritedBy))
	}
	if filter.NotFavoritedBy != 0 {
		q = q.Where("id NOT IN (?)", membersOf(db, models.KindFavorite, filter.NotFavoritedBy))
	}
	if filter.InCartOf != 0 {
		q = q.Where("id IN (?)", membersOf(db, models.KindShoppingCart, filter.InCartOf))
	}
	if filter.NotInCartOf != 0 {
		q = q.Where("id NOT IN (?)", membersOf(db, models.KindShoppingCart, filter.NotInCartOf))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := r.detailQuery(q).
		Order("created_at DESC").Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&recipes).Error
	return recipes, total, err
}

// membersOf selects the recipe ids a user holds in a favorites or cart list.
func membersOf(db *gorm.DB, kind models.MembershipKind, userID uint) *gorm.DB {
	return db.Table(kind.Table()).Select("recipe_id").Where("user_id = ?", userID)
}

func (r *RecipeRepositoryImpl) Update(db *gorm.DB, recipe *models.Recipe) error {
	res := db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
		"name":         recipe.Name,
		"text":         recipe.Text,
		"cooking_time": recipe.CookingTime,
		"image":        recipe.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ReplaceIngredients deletes every existing line of the recipe and inserts items.
func (r *RecipeRepositoryImpl) ReplaceIngredients(db *gorm.DB, recipeID uint, items []models.RecipeIngredient) error {
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].RecipeID = recipeID
	}
	return db.Omit("Ingredient").Create(&items).Error
}

// Delete removes the recipe with its ingredient lines and memberships.
// Call inside a transaction.
func (r *RecipeRepositoryImpl) Delete(db *gorm.DB, id uint) error {
	if err := db.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := db.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	if err := db.Where("recipe_id = ?", id).Delete(&models.ShoppingCart{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Recipe{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ListByAuthor returns the author's newest recipes; limit <= 0 returns all.
func (r *RecipeRepositoryImpl) ListByAuthor(db *gorm.DB, authorID uint, limit int) ([]models.Recipe, error) {
	q := db.Where("author_id = ?", authorID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *RecipeRepositoryImpl) CountByAuthors(db *gorm.DB, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
