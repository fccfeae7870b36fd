package entity

import (
	"time"
)

type UserRole int16

const (
	RoleVisitor UserRole = 1
	RoleMember  UserRole = 2
	RoleAdmin   UserRole = 3
)

var roleNames = map[UserRole]string{
	RoleVisitor: "visitor",
	RoleMember:  "member",
	RoleAdmin:   "admin",
}

// Name returns the presentation name of the role, "visitor" for unknown values.
func (r UserRole) Name() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[RoleVisitor]
}

// Valid reports whether the value is one of the three defined roles.
func (r UserRole) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

type UserState int16

const (
	UserStateNormal  UserState = 1
	UserStateBanned  UserState = 2
	UserStateDeleted UserState = 3
)

type UserSex int16

const (
	SexMale    UserSex = 1
	SexFemale  UserSex = 2
	SexUnknown UserSex = 3
)

type User struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	OpenID string `gorm:"type:varchar(64);uniqueIndex;not null"`

	Nickname string `gorm:"type:varchar(128);not null;default:''"`
	Avatar   string `gorm:"type:varchar(500);not null;default:''"`
	Realname string `gorm:"type:varchar(50);not null;default:''"`
	PhoneNum string `gorm:"type:varchar(20);not null;default:''"`
	Sex      UserSex
	Birthday *time.Time `gorm:"type:date"`
	Address  string     `gorm:"type:varchar(200);not null;default:''"`
	Email    string     `gorm:"type:varchar(75);default:''"`

	Role  UserRole  `gorm:"default:1"`
	State UserState `gorm:"default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "club_user"
}
