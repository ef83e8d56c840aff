package services

import (
	"context"
	"fmt"
	"strings"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/metrics"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type RecipeService interface {
	// viewerID is 0 for anonymous requests throughout.
	ListRecipes(ctx context.Context, db *gorm.DB, viewerID uint, query *dto.RecipeListQuery, page, pageSize int) ([]dto.RecipeResponse, int64, error)
	GetRecipe(ctx context.Context, db *gorm.DB, viewerID, recipeID uint) (*dto.RecipeResponse, error)
	CreateRecipe(ctx context.Context, db *gorm.DB, userID uint, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, db *gorm.DB, userID, recipeID uint, req *dto.UpdateRecipeRequest) (*dto.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, db *gorm.DB, userID, recipeID uint) error

	// ShortCode returns the short-link code of an existing recipe.
	ShortCode(ctx context.Context, db *gorm.DB, recipeID uint) (string, error)
	// ResolveShortCode returns the recipe id behind a short-link code.
	ResolveShortCode(ctx context.Context, db *gorm.DB, code string) (uint, error)
}

type recipeService struct {
	recipeRepo       repositories.RecipeRepository
	ingredientRepo   repositories.IngredientRepository
	membershipRepo   repositories.MembershipRepository
	subscriptionRepo repositories.SubscriptionRepository
	uploads          UploadService
	policy           *auth.Policy
	present          presenter
}

func NewRecipeService(
	recipeRepo repositories.RecipeRepository,
	ingredientRepo repositories.IngredientRepository,
	membershipRepo repositories.MembershipRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	uploads UploadService,
	policy *auth.Policy,
) RecipeService {
	return &recipeService{
		recipeRepo:       recipeRepo,
		ingredientRepo:   ingredientRepo,
		membershipRepo:   membershipRepo,
		subscriptionRepo: subscriptionRepo,
		uploads:          uploads,
		policy:           policy,
		present:          presenter{uploads: uploads},
	}
}

// ---------------- Reads ----------------

func (s *recipeService) ListRecipes(ctx context.Context, db *gorm.DB, viewerID uint, query *dto.RecipeListQuery, page, pageSize int) ([]dto.RecipeResponse, int64, error) {
	filter := repositories.RecipeFilter{AuthorID: query.Author}
	if viewerID != 0 {
		if query.IsFavorited != nil {
			if *query.IsFavorited == 1 {
				filter.FavoritedBy = viewerID
			} else {
				filter.NotFavoritedBy = viewerID
			}
		}
		if query.IsInShoppingCart != nil {
			if *query.IsInShoppingCart == 1 {
				filter.InCartOf = viewerID
			} else {
				filter.NotInCartOf = viewerID
			}
		}
	}

	recipes, total, err := s.recipeRepo.List(db, filter, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	results, err := s.buildResponses(db, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, db *gorm.DB, viewerID, recipeID uint) (*dto.RecipeResponse, error) {
	recipe, err := s.recipeRepo.FindByID(db, recipeID)
	if err != nil {
		return nil, handleRecipeError(err)
	}

	results, err := s.buildResponses(db, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// buildResponses resolves viewer-specific flags with one query per flag.
func (s *recipeService) buildResponses(db *gorm.DB, viewerID uint, recipes []models.Recipe) ([]dto.RecipeResponse, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.membershipRepo.Contains(db, models.KindFavorite, viewerID, recipeIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	inCart, err := s.membershipRepo.Contains(db, models.KindShoppingCart, viewerID, recipeIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	following, err := s.subscriptionRepo.Following(db, viewerID, authorIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	results := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results = append(results, s.present.recipe(r, following[r.AuthorID], favorited[r.ID], inCart[r.ID]))
	}
	return results, nil
}

// ---------------- Writes ----------------

func (s *recipeService) CreateRecipe(ctx context.Context, db *gorm.DB, userID uint, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if !s.policy.Allowed(auth.RoleFor(userID), auth.ResourceRecipe, auth.ActionCreate, auth.OwnerAny) {
		return nil, apperrors.NewUnauthorizedError("Authentication credentials were not provided")
	}

	lines, err := s.resolveIngredients(db, req.Ingredients)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.uploads.SaveImage(ctx, "recipes", req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    userID,
		Name:        strings.TrimSpace(req.Name),
		Image:       imageKey,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: lines,
	}

	if err := s.inTx(db, func(tx *gorm.DB) error {
		return s.recipeRepo.Create(tx, recipe)
	}); err != nil {
		s.uploads.DeleteImage(ctx, imageKey)
		return nil, handleRecipeError(err)
	}

	metrics.RecordRecipeWrite("create")
	logger.CtxInfo(ctx, "Recipe created", "recipe_id", recipe.ID, "ingredients", len(lines))
	return s.GetRecipe(ctx, db, userID, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, db *gorm.DB, userID, recipeID uint, req *dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	recipe, err := s.recipeRepo.FindByID(db, recipeID)
	if err != nil {
		return nil, handleRecipeError(err)
	}
	if err := s.checkOwner(userID, recipe, auth.ActionUpdate); err != nil {
		return nil, err
	}

	lines, err := s.resolveIngredients(db, req.Ingredients)
	if err != nil {
		return nil, err
	}

	previousImage := recipe.Image
	newImage := ""
	if req.Image != nil {
		newImage, err = s.uploads.SaveImage(ctx, "recipes", *req.Image)
		if err != nil {
			return nil, err
		}
		recipe.Image = newImage
	}
	if req.Name != nil {
		recipe.Name = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}

	err = s.inTx(db, func(tx *gorm.DB) error {
		if err := s.recipeRepo.Update(tx, recipe); err != nil {
			return err
		}
		return s.recipeRepo.ReplaceIngredients(tx, recipe.ID, lines)
	})
	if err != nil {
		s.uploads.DeleteImage(ctx, newImage)
		return nil, handleRecipeError(err)
	}

	if newImage != "" && previousImage != newImage {
		s.uploads.DeleteImage(ctx, previousImage)
	}

	metrics.RecordRecipeWrite("update")
	logger.CtxInfo(ctx, "Recipe updated", "recipe_id", recipe.ID, "ingredients", len(lines))
	return s.GetRecipe(ctx, db, userID, recipe.ID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	recipe, err := s.recipeRepo.FindByID(tx, recipeID)
	if err != nil {
		return handleRecipeError(err)
	}
	if err := s.checkOwner(userID, recipe, auth.ActionDelete); err != nil {
		return err
	}

	if err := s.recipeRepo.Delete(tx, recipeID); err != nil {
		return handleRecipeError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	s.uploads.DeleteImage(ctx, recipe.Image)
	metrics.RecordRecipeWrite("delete")
	logger.CtxInfo(ctx, "Recipe deleted", "recipe_id", recipeID)
	return nil
}

// ---------------- Short links ----------------

func (s *recipeService) ShortCode(ctx context.Context, db *gorm.DB, recipeID uint) (string, error) {
	found, err := s.recipeRepo.FindByIDs(db, []uint{recipeID})
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if len(found) == 0 {
		return "", apperrors.ErrRecipeNotFound
	}
	return models.ShortCode(recipeID), nil
}

func (s *recipeService) ResolveShortCode(ctx context.Context, db *gorm.DB, code string) (uint, error) {
	id, ok := models.ParseShortCode(code)
	if !ok {
		return 0, apperrors.ErrRecipeNotFound
	}
	found, err := s.recipeRepo.FindByIDs(db, []uint{id})
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	if len(found) == 0 {
		return 0, apperrors.ErrRecipeNotFound
	}
	return id, nil
}

// ---------------- Helpers ----------------

func (s *recipeService) checkOwner(userID uint, recipe *models.Recipe, action string) error {
	owner := auth.Ownership(userID, recipe.AuthorID)
	if !s.policy.Allowed(auth.RoleFor(userID), auth.ResourceRecipe, action, owner) {
		return apperrors.ErrNotRecipeAuthor
	}
	return nil
}

// resolveIngredients checks that every referenced ingredient exists and
// builds the join rows. Duplicates are rejected by request validation.
func (s *recipeService) resolveIngredients(db *gorm.DB, items []dto.IngredientAmountRequest) ([]models.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, apperrors.FieldError("ingredients", "At least one ingredient is required")
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return nil, apperrors.FieldError("ingredients", fmt.Sprintf("Ingredient %d is listed more than once", it.ID))
		}
		if it.Amount < models.MinAmount {
			return nil, apperrors.FieldError("ingredients", fmt.Sprintf("Amount of ingredient %d must be at least %d", it.ID, models.MinAmount))
		}
		seen[it.ID] = true
		ids = append(ids, it.ID)
	}

	found, err := s.ingredientRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(found) != len(ids) {
		known := make(map[uint]bool, len(found))
		for _, f := range found {
			known[f.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, apperrors.FieldError("ingredients", fmt.Sprintf("Ingredient %d does not exist", id))
			}
		}
	}

	lines := make([]models.RecipeIngredient, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.RecipeIngredient{IngredientID: it.ID, Amount: it.Amount})
	}
	return lines, nil
}

func (s *recipeService) inTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit().Error
}
