package services

import (
	"context"

	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SubscriptionService manages who follows whom. recipesLimit <= 0 means
// every recipe of the author is included.
type SubscriptionService interface {
	Subscribe(ctx context.Context, db *gorm.DB, userID, authorID uint, recipesLimit int) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID uint) error
	ListSubscriptions(ctx context.Context, db *gorm.DB, userID uint, page, pageSize, recipesLimit int) ([]dto.SubscriptionResponse, int64, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	recipeRepo       repositories.RecipeRepository
	present          presenter
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	recipeRepo repositories.RecipeRepository,
	uploads UploadService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		recipeRepo:       recipeRepo,
		present:          presenter{uploads: uploads},
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, db *gorm.DB, userID, authorID uint, recipesLimit int) (*dto.SubscriptionResponse, error) {
	author, err := s.userRepo.FindByID(db, authorID)
	if err != nil {
		return nil, handleUserError(err)
	}
	if userID == authorID {
		return nil, apperrors.ErrSelfSubscription
	}

	exists, err := s.subscriptionRepo.Exists(db, userID, authorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrAlreadySubscribed
	}
	if err := s.subscriptionRepo.Create(db, userID, authorID); err != nil {
		return nil, handleSubscriptionError(err)
	}

	logger.CtxInfo(ctx, "Subscribed", "author_id", authorID)
	results, err := s.withRecipes(db, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID uint) error {
	if _, err := s.userRepo.FindByID(db, authorID); err != nil {
		return handleUserError(err)
	}
	if err := s.subscriptionRepo.Delete(db, userID, authorID); err != nil {
		return handleSubscriptionError(err)
	}
	logger.CtxInfo(ctx, "Unsubscribed", "author_id", authorID)
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, db *gorm.DB, userID uint, page, pageSize, recipesLimit int) ([]dto.SubscriptionResponse, int64, error) {
	authors, total, err := s.subscriptionRepo.ListAuthors(db, userID, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	results, err := s.withRecipes(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// withRecipes builds responses for followed authors. Every author here is
// followed by the requester, so is_subscribed is always true.
func (s *subscriptionService) withRecipes(db *gorm.DB, authors []models.User, recipesLimit int) ([]dto.SubscriptionResponse, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := s.recipeRepo.CountByAuthors(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	results := make([]dto.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		recipes, err := s.recipeRepo.ListByAuthor(db, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		results = append(results, dto.SubscriptionResponse{
			UserResponse: s.present.user(&authors[i], true),
			Recipes:      s.present.shortRecipes(recipes),
			RecipesCount: counts[authors[i].ID],
		})
	}
	return results, nil
}
