package handler

import (
	"errors"
	"net/http"

	"github.com/blues/campaignd/internal/logic"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// ErrorFromLogic 按编排层错误类型选择状态码
func ErrorFromLogic(c *gin.Context, err error) {
	ErrorResponse(c, StatusFor(err), err.Error())
}

// StatusFor 编排层错误到 HTTP 状态码的映射
func StatusFor(err error) int {
	var (
		verr *logic.ValidationError
		cerr *logic.ConnectionError
		rerr *logic.RemoteError
	)
	switch {
	case errors.As(err, &verr):
		switch verr.Reason {
		case logic.ReasonNotFound:
			return http.StatusNotFound
		case logic.ReasonNotOwner:
			return http.StatusForbidden
		default:
			return http.StatusUnprocessableEntity
		}
	case errors.As(err, &cerr):
		return http.StatusServiceUnavailable
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
