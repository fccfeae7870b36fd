package handler

import (
	"net/http"

	"xclub/api/middleware"
	"xclub/api/response"
	"xclub/internal/dto"
	"xclub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type RecordHandler struct {
	Feishu   *service.FeishuClient
	Validate *validator.Validate
	Log      logrus.FieldLogger
}

func NewRecordHandler(feishu *service.FeishuClient, validate *validator.Validate, log logrus.FieldLogger) *RecordHandler {
	return &RecordHandler{Feishu: feishu, Validate: validate, Log: log}
}

// Create writes a check-in record to the external record store.
func (h *RecordHandler) Create(c echo.Context) error {
	session, _ := middleware.SessionFromContext(c)

	var req dto.CreateRecordRequest
	if err := decodeJSON(c, &req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeParamError, err.Error())
	}

	nickname := session.Nickname
	if nickname == "" {
		nickname = "user_" + shortOpenID(session.OpenID)
	}

	recordID, err := h.Feishu.CreateRecord(c.Request().Context(), service.CheckinRecord{
		Nickname:   nickname,
		MealType:   req.MealType,
		Price:      req.Price,
		Location:   req.Location,
		DateMillis: req.Date,
	})
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}

	h.Log.WithFields(logrus.Fields{"openid": session.OpenID, "record_id": recordID}).Info("checkin record created")
	return response.OKMsg(c, dto.CreateRecordResponse{RecordID: recordID}, "recorded")
}

func shortOpenID(openID string) string {
	if len(openID) > 8 {
		return openID[:8]
	}
	return openID
}
