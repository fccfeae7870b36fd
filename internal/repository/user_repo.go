package repository

import (
	"context"
	"errors"

	"xclub/internal/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByOpenID(ctx context.Context, openID string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	UpdateByOpenID(ctx context.Context, openID string, fields map[string]any) (int64, error)
	UpdateRole(ctx context.Context, openID string, role entity.UserRole) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByOpenID(ctx context.Context, openID string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("open_id = ?", openID).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateByOpenID(ctx context.Context, openID string, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("open_id = ?", openID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *userRepository) UpdateRole(ctx context.Context, openID string, role entity.UserRole) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("open_id = ?", openID).
		Update("role", role)
	return result.RowsAffected, result.Error
}
