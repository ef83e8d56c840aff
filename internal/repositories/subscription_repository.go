package repositories

import (
	"errors"

	"foodgram_backend/internal/database"
	"foodgram_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSubscriptionExists   = errors.New("subscription already exists")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSelfSubscription     = errors.New("cannot subscribe to yourself")
)

type SubscriptionRepository interface {
	Create(db *gorm.DB, userID, authorID uint) error
	Delete(db *gorm.DB, userID, authorID uint) error
	Exists(db *gorm.DB, userID, authorID uint) (bool, error)
	// Following returns which of authorIDs the user follows.
	Following(db *gorm.DB, userID uint, authorIDs []uint) (map[uint]bool, error)
	ListAuthors(db *gorm.DB, userID uint, page, pageSize int) ([]models.User, int64, error)
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

func (r *SubscriptionRepositoryImpl) Create(db *gorm.DB, userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfSubscription
	}
	err := db.Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return ErrSubscriptionExists
	case database.IsCheckViolation(err):
		return ErrSelfSubscription
	default:
		return err
	}
}

func (r *SubscriptionRepositoryImpl) Delete(db *gorm.DB, userID, authorID uint) error {
	res := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Exists(db *gorm.DB, userID, authorID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepositoryImpl) Following(db *gorm.DB, userID uint, authorIDs []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return found, nil
	}

	var ids []uint
	err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (r *SubscriptionRepositoryImpl) ListAuthors(db *gorm.DB, userID uint, page, pageSize int) ([]models.User, int64, error) {
	q := db.Model(&models.User{}).
		Joins("JOIN subscriptions AS s ON s.author_id = users.id").
		Where("s.user_id = ?", userID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := q.Order("users.username ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&authors).Error
	return authors, total, err
}
