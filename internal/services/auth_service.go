package services

import (
	"context"
	"errors"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/metrics"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout revokes the token described by claims until it expires.
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	revoked  auth.RevocationStore
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	revoked auth.RevocationStore,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		revoked:  revoked,
	}
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			metrics.RecordLogin(false)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		metrics.RecordLogin(false)
		logger.CtxInfo(ctx, "Failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.RecordLogin(true)
	logger.CtxInfo(ctx, "User logged in", "user_id", user.ID)
	return &dto.TokenResponse{AuthToken: token}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "User logged out", "user_id", claims.UserID)
	return nil
}
