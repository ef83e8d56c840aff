package services

import (
	"context"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/metrics"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// MembershipService toggles recipes in a user's favorites or shopping cart.
type MembershipService interface {
	Add(ctx context.Context, db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) (*dto.ShortRecipeResponse, error)
	Remove(ctx context.Context, db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error
}

type membershipService struct {
	membershipRepo repositories.MembershipRepository
	recipeRepo     repositories.RecipeRepository
	policy         *auth.Policy
	present        presenter
}

func NewMembershipService(
	membershipRepo repositories.MembershipRepository,
	recipeRepo repositories.RecipeRepository,
	uploads UploadService,
	policy *auth.Policy,
) MembershipService {
	return &membershipService{
		membershipRepo: membershipRepo,
		recipeRepo:     recipeRepo,
		policy:         policy,
		present:        presenter{uploads: uploads},
	}
}

func (s *membershipService) Add(ctx context.Context, db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) (*dto.ShortRecipeResponse, error) {
	if err := s.authorize(kind, userID, auth.ActionCreate); err != nil {
		return nil, err
	}

	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.membershipRepo.Exists(db, kind, userID, recipeID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, handleMembershipError(kind, repositories.ErrMembershipExists)
	}

	// a concurrent duplicate slips past Exists and is caught by the unique index
	if err := s.membershipRepo.Add(db, kind, userID, recipeID); err != nil {
		return nil, handleMembershipError(kind, err)
	}

	metrics.RecordMembershipChange(string(kind), "add")
	logger.CtxInfo(ctx, "Recipe added", "kind", kind, "recipe_id", recipeID)
	resp := s.present.shortRecipe(recipe)
	return &resp, nil
}

func (s *membershipService) Remove(ctx context.Context, db *gorm.DB, kind models.MembershipKind, userID, recipeID uint) error {
	if err := s.authorize(kind, userID, auth.ActionDelete); err != nil {
		return err
	}

	if _, err := s.findRecipe(db, recipeID); err != nil {
		return err
	}

	if err := s.membershipRepo.Remove(db, kind, userID, recipeID); err != nil {
		return handleMembershipError(kind, err)
	}

	metrics.RecordMembershipChange(string(kind), "remove")
	logger.CtxInfo(ctx, "Recipe removed", "kind", kind, "recipe_id", recipeID)
	return nil
}

func (s *membershipService) authorize(kind models.MembershipKind, userID uint, action string) error {
	if !kind.Valid() {
		return apperrors.NewBadRequestError("Unknown membership kind")
	}
	if !s.policy.Allowed(auth.RoleFor(userID), string(kind), action, auth.OwnerAny) {
		return apperrors.NewUnauthorizedError("Authentication credentials were not provided")
	}
	return nil
}

func (s *membershipService) findRecipe(db *gorm.DB, recipeID uint) (*models.Recipe, error) {
	found, err := s.recipeRepo.FindByIDs(db, []uint{recipeID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(found) == 0 {
		return nil, apperrors.ErrRecipeNotFound
	}
	return &found[0], nil
}
