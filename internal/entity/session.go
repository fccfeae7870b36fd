package entity

import (
	"github.com/google/uuid"
)

// Session is one active login. A user (openid) holds at most one live session;
// the invariant is maintained by deleting prior rows before inserting a new one.
type Session struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Token  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	OpenID string `gorm:"type:varchar(64);index;not null"`

	// SessionKey is the opaque upstream secret bound to the identity at issuance.
	SessionKey string `gorm:"type:varchar(128);not null"`

	Nickname  string `gorm:"type:varchar(64)"`
	AvatarURL string `gorm:"type:varchar(512)"`

	// Epoch seconds. ExpireAt is indexed so the hygiene sweep stays cheap.
	CreatedAt int64 `gorm:"not null"`
	ExpireAt  int64 `gorm:"index;not null"`
}

func (Session) TableName() string {
	return "user_session"
}

func (s *Session) IsExpired(now int64) bool {
	return now > s.ExpireAt
}
