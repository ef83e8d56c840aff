package services

import (
	"errors"

	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

func handleUserError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserDuplicate):
		return apperrors.ErrAlreadyExists(err)
	}
	return apperrors.InternalError(err)
}

func handleRecipeError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRecipeNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrRecipeNotFound
	case errors.Is(err, repositories.ErrIngredientNotFound):
		return apperrors.ErrIngredientNotFound
	}
	return apperrors.InternalError(err)
}

func handleIngredientError(err error) error {
	if errors.Is(err, repositories.ErrIngredientNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrIngredientNotFound
	}
	return apperrors.InternalError(err)
}

// handleMembershipError maps repository results to the kind-specific
// "already added" and "not added" errors.
func handleMembershipError(kind models.MembershipKind, err error) error {
	switch {
	case errors.Is(err, repositories.ErrMembershipExists):
		if kind == models.KindShoppingCart {
			return apperrors.ErrAlreadyInCart
		}
		return apperrors.ErrAlreadyInFavorites
	case errors.Is(err, repositories.ErrMembershipNotFound):
		if kind == models.KindShoppingCart {
			return apperrors.ErrNotInCart
		}
		return apperrors.ErrNotInFavorites
	case errors.Is(err, repositories.ErrRecipeNotFound):
		return apperrors.ErrRecipeNotFound
	}
	return apperrors.InternalError(err)
}

func handleSubscriptionError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrSelfSubscription):
		return apperrors.ErrSelfSubscription
	case errors.Is(err, repositories.ErrSubscriptionExists):
		return apperrors.ErrAlreadySubscribed
	case errors.Is(err, repositories.ErrSubscriptionNotFound):
		return apperrors.ErrNotSubscribed
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	}
	return apperrors.InternalError(err)
}
