package entity

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditLogin           AuditAction = "login"
	AuditLogout          AuditAction = "logout"
	AuditRegister        AuditAction = "register"
	AuditRoleUpdate      AuditAction = "role_update"
	AuditCodeCreated     AuditAction = "code_created"
	AuditCodeInvalidated AuditAction = "code_invalidated"
)

// AuditLog records auth-relevant events. Writes are best-effort; a failed
// audit insert never fails the operation it describes.
type AuditLog struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	UserID *int64 `gorm:"index"`
	OpenID string `gorm:"type:varchar(64);index"`

	Action   AuditAction    `gorm:"type:varchar(32);not null"`
	Metadata datatypes.JSON ``
	IP       *string        `gorm:"type:varchar(45)"`

	CreatedAt time.Time
}

func (AuditLog) TableName() string {
	return "club_audit_log"
}
