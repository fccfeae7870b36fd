package entity

import (
	"time"
)

type ActivationCodeState int16

const (
	CodeStateUnused  ActivationCodeState = 1
	CodeStateUsed    ActivationCodeState = 2
	CodeStateInvalid ActivationCodeState = 3
)

// ActivationCode is a single-use registration credential. Transitions are
// one-directional: UNUSED -> USED via consumption, UNUSED -> INVALID via
// administrative invalidation. USED and INVALID are terminal. Rows are never
// deleted; a consumed code keeps its consumer as an audit link.
type ActivationCode struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Code string `gorm:"type:varchar(32);uniqueIndex;not null"`

	UserID *int64 `gorm:"index"`
	UsedAt *time.Time

	State  ActivationCodeState `gorm:"not null;default:1"`
	Remark string              `gorm:"type:varchar(200);not null;default:''"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ActivationCode) TableName() string {
	return "club_activation_code"
}
