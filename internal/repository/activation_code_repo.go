package repository

import (
	"context"
	"errors"
	"time"

	"xclub/internal/entity"

	"gorm.io/gorm"
)

type ActivationCodeRepository interface {
	Create(ctx context.Context, code *entity.ActivationCode) error
	FindByCode(ctx context.Context, code string) (*entity.ActivationCode, error)
	FindByUserID(ctx context.Context, userID int64) (*entity.ActivationCode, error)

	// MarkUsed and MarkInvalid are conditional updates guarded by state=UNUSED.
	// The affected-row count is the atomic success signal: of two concurrent
	// attempts on the same code, exactly one sees 1. Never reimplement these as
	// a read followed by an unconditional write.
	MarkUsed(ctx context.Context, code string, userID int64, usedAt time.Time) (int64, error)
	MarkInvalid(ctx context.Context, code string) (int64, error)
}

type activationCodeRepository struct {
	db *gorm.DB
}

func NewActivationCodeRepository(db *gorm.DB) ActivationCodeRepository {
	return &activationCodeRepository{db: db}
}

func (r *activationCodeRepository) Create(ctx context.Context, code *entity.ActivationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *activationCodeRepository) FindByCode(ctx context.Context, code string) (*entity.ActivationCode, error) {
	var record entity.ActivationCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *activationCodeRepository) FindByUserID(ctx context.Context, userID int64) (*entity.ActivationCode, error) {
	var record entity.ActivationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *activationCodeRepository) MarkUsed(ctx context.Context, code string, userID int64, usedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.ActivationCode{}).
		Where("code = ? AND state = ?", code, entity.CodeStateUnused).
		Updates(map[string]any{
			"state":   entity.CodeStateUsed,
			"user_id": userID,
			"used_at": usedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *activationCodeRepository) MarkInvalid(ctx context.Context, code string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.ActivationCode{}).
		Where("code = ? AND state = ?", code, entity.CodeStateUnused).
		Update("state", entity.CodeStateInvalid)
	return result.RowsAffected, result.Error
}
