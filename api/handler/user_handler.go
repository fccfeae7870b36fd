package handler

import (
	"net/http"
	"strconv"
	"time"

	"xclub/api/middleware"
	"xclub/api/response"
	"xclub/internal/dto"
	"xclub/internal/entity"
	"xclub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	Users    *service.UserService
	Validate *validator.Validate
	Log      logrus.FieldLogger
}

func NewUserHandler(users *service.UserService, validate *validator.Validate, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Users: users, Validate: validate, Log: log}
}

// Me returns the current user, creating a visitor record lazily on first
// access.
func (h *UserHandler) Me(c echo.Context) error {
	session, _ := middleware.SessionFromContext(c)
	ctx := c.Request().Context()

	user, err := h.Users.GetByOpenID(ctx, session.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user == nil {
		user, _, err = h.Users.GetOrCreate(ctx, session.OpenID, session.Nickname, session.AvatarURL)
		if err != nil {
			return writeServiceError(c, h.Log, err)
		}
	}
	return response.OK(c, dto.UserInfoFromEntity(user))
}

func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, "invalid user id")
	}

	user, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user == nil {
		return response.Fail(c, http.StatusNotFound, response.CodeUserNotFound, "user not found")
	}
	return response.OK(c, dto.UserInfoFromEntity(user))
}

// UpdateMe patches the current user's profile through the allow-list.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	session, _ := middleware.SessionFromContext(c)

	var req dto.UserUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	update, hasFields := userUpdateFromRequest(req)
	if !hasFields {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, "nothing to update")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByOpenID(ctx, session.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if user == nil {
		if _, err := h.Users.Create(ctx, service.CreateUserInput{
			OpenID:   session.OpenID,
			Nickname: session.Nickname,
			Avatar:   session.AvatarURL,
		}); err != nil {
			return writeServiceError(c, h.Log, err)
		}
	}

	if _, err := h.Users.Update(ctx, session.OpenID, update); err != nil {
		return writeServiceError(c, h.Log, err)
	}

	updated, err := h.Users.GetByOpenID(ctx, session.OpenID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return response.OK(c, dto.UserInfoFromEntity(updated))
}

// UpdateRole changes a user's role. The route is admin-gated by middleware;
// the role value itself is validated in the service.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, "invalid user id")
	}

	var req dto.RoleUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	ctx := c.Request().Context()
	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if target == nil {
		return response.Fail(c, http.StatusNotFound, response.CodeUserNotFound, "user not found")
	}

	if err := h.Users.UpdateRole(ctx, target.OpenID, entity.UserRole(req.Role)); err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return response.OKMsg(c, nil, "role updated")
}

func userUpdateFromRequest(req dto.UserUpdateRequest) (service.UserUpdate, bool) {
	update := service.UserUpdate{
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Realname: req.Realname,
		PhoneNum: req.PhoneNum,
		Address:  req.Address,
		Email:    req.Email,
	}
	if req.Sex != nil {
		sex := entity.UserSex(*req.Sex)
		update.Sex = &sex
	}
	if req.Birthday != nil {
		if birthday, err := time.Parse("2006-01-02", *req.Birthday); err == nil {
			update.Birthday = &birthday
		}
	}
	hasFields := update.Nickname != nil || update.Avatar != nil || update.Realname != nil ||
		update.PhoneNum != nil || update.Sex != nil || update.Birthday != nil ||
		update.Address != nil || update.Email != nil
	return update, hasFields
}
