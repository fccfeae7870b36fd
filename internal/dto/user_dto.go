package dto

import (
	"time"

	"xclub/internal/entity"
)

type UserInfo struct {
	ID       int64   `json:"id"`
	OpenID   string  `json:"openid,omitempty"`
	Nickname string  `json:"nickname"`
	Avatar   string  `json:"avatar"`
	Realname string  `json:"realname"`
	PhoneNum string  `json:"phone_num"`
	Sex      int16   `json:"sex"`
	Role     int16   `json:"role"`
	RoleName string  `json:"role_name"`
	State    int16   `json:"state"`
	Birthday *string `json:"birthday"`
	Address  string  `json:"address"`
	Email    string  `json:"email"`
	Created  string  `json:"create_time,omitempty"`
}

// UserInfoFromEntity decorates the stored row with the role name and
// stringified dates. Presentation only, nothing here is persisted.
func UserInfoFromEntity(user *entity.User) UserInfo {
	info := UserInfo{
		ID:       user.ID,
		OpenID:   user.OpenID,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
		Realname: user.Realname,
		PhoneNum: user.PhoneNum,
		Sex:      int16(user.Sex),
		Role:     int16(user.Role),
		RoleName: user.Role.Name(),
		State:    int16(user.State),
		Address:  user.Address,
		Email:    user.Email,
	}
	if user.Birthday != nil {
		birthday := user.Birthday.Format("2006-01-02")
		info.Birthday = &birthday
	}
	if !user.CreatedAt.IsZero() {
		info.Created = user.CreatedAt.Format(time.DateTime)
	}
	return info
}

type UserUpdateRequest struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`
	Realname *string `json:"realname"`
	PhoneNum *string `json:"phone_num"`
	Sex      *int16  `json:"sex" validate:"omitempty,oneof=1 2 3"`
	Birthday *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Address  *string `json:"address"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type RoleUpdateRequest struct {
	Role int16 `json:"role" validate:"required"`
}
