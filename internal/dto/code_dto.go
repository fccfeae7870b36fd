package dto

import (
	"time"

	"xclub/internal/entity"
)

type CreateCodeRequest struct {
	Remark string `json:"remark"`
}

type CreateCodeResponse struct {
	Code string `json:"code"`
}

type BatchCreateCodeRequest struct {
	Count  int    `json:"count" validate:"required,min=1,max=500"`
	Remark string `json:"remark"`
}

type BatchCreateCodeResponse struct {
	Codes []string `json:"codes"`
}

type ActivationCodeInfo struct {
	ID      int64   `json:"id"`
	Code    string  `json:"code"`
	State   int16   `json:"state"`
	UserID  *int64  `json:"user_id"`
	UsedAt  *string `json:"used_at"`
	Remark  string  `json:"remark"`
	Created string  `json:"create_time,omitempty"`
}

func ActivationCodeInfoFromEntity(code *entity.ActivationCode) ActivationCodeInfo {
	info := ActivationCodeInfo{
		ID:     code.ID,
		Code:   code.Code,
		State:  int16(code.State),
		UserID: code.UserID,
		Remark: code.Remark,
	}
	if code.UsedAt != nil {
		usedAt := code.UsedAt.Format(time.DateTime)
		info.UsedAt = &usedAt
	}
	if !code.CreatedAt.IsZero() {
		info.Created = code.CreatedAt.Format(time.DateTime)
	}
	return info
}
