package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a user mutation and an activation-code mutation as one unit
// of store work. Registration promotes a user and consumes a code; committing
// them together closes the window where a crash leaves the user promoted with
// the code still unused.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(users UserRepository, codes ActivationCodeRepository) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(users UserRepository, codes ActivationCodeRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUserRepository(tx), NewActivationCodeRepository(tx))
	})
}
