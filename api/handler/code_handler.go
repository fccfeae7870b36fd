package handler

import (
	"net/http"

	"xclub/api/response"
	"xclub/internal/dto"
	"xclub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// CodeHandler exposes activation-code administration. All routes are
// admin-gated by middleware.
type CodeHandler struct {
	Codes    *service.ActivationCodeService
	Validate *validator.Validate
	Log      logrus.FieldLogger
}

func NewCodeHandler(codes *service.ActivationCodeService, validate *validator.Validate, log logrus.FieldLogger) *CodeHandler {
	return &CodeHandler{Codes: codes, Validate: validate, Log: log}
}

func (h *CodeHandler) Create(c echo.Context) error {
	var req dto.CreateCodeRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	code, err := h.Codes.Create(c.Request().Context(), req.Remark)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return response.OK(c, dto.CreateCodeResponse{Code: code})
}

// BatchCreate creates count codes. The batch is not atomic; on failure the
// codes already created are returned with a partial-failure message.
func (h *CodeHandler) BatchCreate(c echo.Context) error {
	var req dto.BatchCreateCodeRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	codes, err := h.Codes.BatchCreate(c.Request().Context(), req.Count, req.Remark)
	if err != nil {
		h.Log.WithError(err).WithField("created", len(codes)).Warn("batch code creation failed partway")
		return c.JSON(http.StatusInternalServerError, response.Envelope{
			Code: response.CodeInternalError,
			Msg:  "batch partially created",
			Data: dto.BatchCreateCodeResponse{Codes: codes},
		})
	}
	return response.OK(c, dto.BatchCreateCodeResponse{Codes: codes})
}

func (h *CodeHandler) Invalidate(c echo.Context) error {
	code := c.Param("code")

	ok, err := h.Codes.Invalidate(c.Request().Context(), code)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if !ok {
		// Absent, consumed, or already invalidated; consumption is never
		// overridden.
		record, err := h.Codes.GetByCode(c.Request().Context(), code)
		if err != nil {
			return writeServiceError(c, h.Log, err)
		}
		if record == nil {
			return response.Fail(c, http.StatusNotFound, response.CodeActivationNotFound, "activation code not found")
		}
		return response.Fail(c, http.StatusConflict, response.CodeActivationUsed, "activation code not invalidatable")
	}
	return response.OKMsg(c, nil, "invalidated")
}

func (h *CodeHandler) Get(c echo.Context) error {
	record, err := h.Codes.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if record == nil {
		return response.Fail(c, http.StatusNotFound, response.CodeActivationNotFound, "activation code not found")
	}
	return response.OK(c, dto.ActivationCodeInfoFromEntity(record))
}
