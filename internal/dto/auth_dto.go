package dto

type LoginRequest struct {
	Code      string `json:"code" validate:"required"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type LoginResponse struct {
	SessionID string `json:"session_id"`
	OpenID    string `json:"openid"`
	IsNewUser bool   `json:"is_new_user"`
	Role      int16  `json:"role"`
	RoleName  string `json:"role_name"`
}

type RegisterRequest struct {
	Code           string `json:"code" validate:"required"`
	ActivationCode string `json:"activation_code" validate:"required"`
	Realname       string `json:"realname"`
	Nickname       string `json:"nickname"`
	AvatarURL      string `json:"avatar_url"`
}

type RegisterResponse struct {
	SessionID string `json:"session_id"`
	OpenID    string `json:"openid"`
	UserID    int64  `json:"user_id"`
	Role      int16  `json:"role"`
	RoleName  string `json:"role_name"`
}

type CheckResponse struct {
	Valid    bool   `json:"valid"`
	OpenID   string `json:"openid,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Role     int16  `json:"role,omitempty"`
	RoleName string `json:"role_name,omitempty"`
}
