package handler

import (
	"net/http"

	"xclub/api/middleware"
	"xclub/api/response"
	"xclub/internal/dto"
	"xclub/internal/entity"
	"xclub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Wechat   *service.WechatClient
	Sessions *service.SessionService
	Users    *service.UserService
	Validate *validator.Validate
	Log      logrus.FieldLogger
}

func NewAuthHandler(
	wechat *service.WechatClient,
	sessions *service.SessionService,
	users *service.UserService,
	validate *validator.Validate,
	log logrus.FieldLogger,
) *AuthHandler {
	return &AuthHandler{
		Wechat:   wechat,
		Sessions: sessions,
		Users:    users,
		Validate: validate,
		Log:      log,
	}
}

// Login exchanges the one-time code for an identity and issues a session,
// superseding any session the identity already held.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	ctx := c.Request().Context()
	identity, err := h.Wechat.Code2Session(ctx, req.Code)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	token, isNewUser, err := h.Sessions.GetOrCreate(ctx, identity.OpenID, identity.SessionKey, req.Nickname, req.AvatarURL)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	role := entity.RoleVisitor
	user, err := h.Users.GetByOpenID(ctx, identity.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user != nil {
		role = user.Role
	}

	return response.OK(c, dto.LoginResponse{
		SessionID: token,
		OpenID:    identity.OpenID,
		IsNewUser: isNewUser,
		Role:      int16(role),
		RoleName:  role.Name(),
	})
}

// Check reports whether the presented session token is still valid.
func (h *AuthHandler) Check(c echo.Context) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return response.OK(c, dto.CheckResponse{Valid: false})
	}

	role := entity.RoleVisitor
	user, err := h.Users.GetByOpenID(c.Request().Context(), session.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user != nil {
		role = user.Role
	}

	return response.OK(c, dto.CheckResponse{
		Valid:    true,
		OpenID:   session.OpenID,
		Nickname: session.Nickname,
		Role:     int16(role),
		RoleName: role.Name(),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "not logged in")
	}
	if _, err := h.Sessions.DeleteByOpenID(c.Request().Context(), session.OpenID); err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return response.OKMsg(c, nil, "logged out")
}

// Register resolves the identity, runs the activation-code registration flow
// and only then issues a session.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	ctx := c.Request().Context()
	identity, err := h.Wechat.Code2Session(ctx, req.Code)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	userID, err := h.Users.Register(ctx, identity.OpenID, req.ActivationCode, req.Realname, req.Nickname, req.AvatarURL)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	token, err := h.Sessions.Create(ctx, identity.OpenID, identity.SessionKey, req.Nickname, req.AvatarURL)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	role := entity.RoleMember
	user, err := h.Users.GetByOpenID(ctx, identity.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user != nil {
		role = user.Role
	}

	return response.OKMsg(c, dto.RegisterResponse{
		SessionID: token,
		OpenID:    identity.OpenID,
		UserID:    userID,
		Role:      int16(role),
		RoleName:  role.Name(),
	}, "registered")
}
