// backend/internal/auth/repository.go
package auth

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"quiz-platform/internal/apperr"
	"quiz-platform/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User with this email doesn't exist")
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		log.Printf("Error finding user %d: %v", id, err)
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("user with this email already exists")
	}
	return err
}

func (r *Repository) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", hash)
	if result.Error != nil {
		log.Printf("Error updating password for user %d: %v", userID, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
