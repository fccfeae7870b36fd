package repository

import (
	"context"
	"errors"

	"xclub/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByToken(ctx context.Context, token string) (*entity.Session, error)
	FindByOpenID(ctx context.Context, openID string) (*entity.Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByOpenID(ctx context.Context, openID string) (int64, error)
	UpdateByToken(ctx context.Context, token string, fields map[string]any) (int64, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByOpenID(ctx context.Context, openID string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Where("open_id = ?", openID).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteByOpenID(ctx context.Context, openID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("open_id = ?", openID).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) UpdateByToken(ctx context.Context, token string, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("token = ?", token).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expire_at < ?", now).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}
