package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"xclub/api/response"
	"xclub/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// writeServiceError maps core failures to the wire envelope. Upstream provider
// errors keep their code and message; unexpected errors are logged in full and
// reported as a generic internal error.
func writeServiceError(c echo.Context, log logrus.FieldLogger, err error) error {
	var wechatErr *service.WechatError
	if errors.As(err, &wechatErr) {
		return response.Fail(c, http.StatusBadRequest, response.CodeWechatError, wechatErr.Error())
	}
	var feishuErr *service.FeishuError
	if errors.As(err, &feishuErr) {
		return response.Fail(c, http.StatusBadGateway, response.CodeFeishuError, feishuErr.Error())
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	case errors.Is(err, service.ErrCodeNotFound):
		return response.Fail(c, http.StatusBadRequest, response.CodeActivationNotFound, err.Error())
	case errors.Is(err, service.ErrCodeUsed):
		return response.Fail(c, http.StatusConflict, response.CodeActivationUsed, err.Error())
	case errors.Is(err, service.ErrCodeInvalid):
		return response.Fail(c, http.StatusConflict, response.CodeActivationInvalid, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered):
		return response.Fail(c, http.StatusConflict, response.CodeAlreadyRegistered, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return response.Fail(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
	}

	log.WithError(err).Error("unhandled service error")
	return response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "internal error")
}
