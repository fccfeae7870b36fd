// Package response defines the wire envelope and the stable machine-readable
// error codes shared by handlers and middleware.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes. The envelope code is the contract clients branch on; the HTTP
// status is advisory.
const (
	CodeOK = 0

	CodeParamError    = 1001
	CodeInternalError = 1002

	CodeSessionInvalid = 2001
	CodeUnauthorized   = 2003
	CodeForbidden      = 2004

	CodeUserNotFound      = 3001
	CodeAlreadyRegistered = 3002

	CodeActivationNotFound = 4001
	CodeActivationUsed     = 4002
	CodeActivationInvalid  = 4003

	CodeWechatError = 5001
	CodeFeishuError = 6001
)

type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Code: CodeOK, Data: data})
}

func OKMsg(c echo.Context, data any, msg string) error {
	return c.JSON(http.StatusOK, Envelope{Code: CodeOK, Msg: msg, Data: data})
}

func Fail(c echo.Context, status int, code int, msg string) error {
	return c.JSON(status, Envelope{Code: code, Msg: msg})
}
