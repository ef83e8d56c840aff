package services

import (
	"context"
	"errors"
	"strings"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/models"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/services/dto"
	"foodgram_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	// viewerID is 0 for anonymous requests.
	ListUsers(ctx context.Context, db *gorm.DB, viewerID uint, page, pageSize int) ([]dto.UserResponse, int64, error)
	GetUser(ctx context.Context, db *gorm.DB, viewerID, userID uint) (*dto.UserResponse, error)
	GetMe(ctx context.Context, db *gorm.DB, userID uint) (*dto.UserResponse, error)
	SetAvatar(ctx context.Context, db *gorm.DB, userID uint, req *dto.AvatarRequest) (*dto.AvatarResponse, error)
	DeleteAvatar(ctx context.Context, db *gorm.DB, userID uint) error
	SetPassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.SetPasswordRequest) error
}

type userService struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	uploads          UploadService
	present          presenter
}

func NewUserService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	uploads UploadService,
) UserService {
	return &userService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		uploads:          uploads,
		present:          presenter{uploads: uploads},
	}
}

func (s *userService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password, req.Username); err != nil {
		return nil, apperrors.FieldError("password", err.Error())
	}

	email := strings.TrimSpace(req.Email)
	if taken, err := s.userRepo.EmailTaken(db, email); err != nil {
		return nil, apperrors.InternalError(err)
	} else if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if taken, err := s.userRepo.UsernameTaken(db, req.Username); err != nil {
		return nil, apperrors.InternalError(err)
	} else if taken {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        email,
		Username:     req.Username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repositories.ErrUserDuplicate) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	resp := s.present.user(user, false)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, db *gorm.DB, viewerID uint, page, pageSize int) ([]dto.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(db, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	following, err := s.subscriptionRepo.Following(db, viewerID, ids)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	results := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, s.present.user(&users[i], following[users[i].ID]))
	}
	return results, total, nil
}

func (s *userService) GetUser(ctx context.Context, db *gorm.DB, viewerID, userID uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	subscribed := false
	if viewerID != 0 && viewerID != userID {
		subscribed, err = s.subscriptionRepo.Exists(db, viewerID, userID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	resp := s.present.user(user, subscribed)
	return &resp, nil
}

func (s *userService) GetMe(ctx context.Context, db *gorm.DB, userID uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// token outlived its user
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	resp := s.present.user(user, false)
	return &resp, nil
}

func (s *userService) SetAvatar(ctx context.Context, db *gorm.DB, userID uint, req *dto.AvatarRequest) (*dto.AvatarResponse, error) {
	key, err := s.uploads.SaveImage(ctx, "users", req.Avatar)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		s.uploads.DeleteImage(ctx, key)
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		s.uploads.DeleteImage(ctx, key)
		return nil, handleUserError(err)
	}
	previous := user.Avatar

	if err := s.userRepo.UpdateAvatar(tx, userID, key); err != nil {
		s.uploads.DeleteImage(ctx, key)
		return nil, handleUserError(err)
	}
	if err := tx.Commit().Error; err != nil {
		s.uploads.DeleteImage(ctx, key)
		return nil, apperrors.InternalError(err)
	}

	s.uploads.DeleteImage(ctx, previous)
	logger.CtxInfo(ctx, "Avatar updated", "user_id", userID, "key", key)
	return &dto.AvatarResponse{Avatar: s.uploads.URL(key)}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, db *gorm.DB, userID uint) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleUserError(err)
	}
	if user.Avatar == "" {
		return apperrors.ErrAvatarNotSet
	}

	if err := s.userRepo.UpdateAvatar(db, userID, ""); err != nil {
		return handleUserError(err)
	}
	s.uploads.DeleteImage(ctx, user.Avatar)
	return nil
}

func (s *userService) SetPassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.SetPasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleUserError(err)
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrWrongPassword
	}
	if err := auth.ValidatePassword(req.NewPassword, user.Username); err != nil {
		return apperrors.FieldError("new_password", err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		return handleUserError(err)
	}

	logger.CtxInfo(ctx, "Password changed", "user_id", userID)
	return nil
}
