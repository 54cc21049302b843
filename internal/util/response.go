package util

import (
	"errors"
	"net/http"
	"wellness_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	ErrorCode ErrorCode   `json:"error_code,omitempty"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, errorCode ErrorCode, message string) {
	c.JSON(code, Response{
		Success:   false,
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeValidation, message)
}

// Fail 按错误分类返回，业务错误原样透出给客户端
func Fail(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		LogInternalError(c, err)
		return
	}

	switch appErr.Kind {
	case KindValidation:
		Error(c, http.StatusBadRequest, appErr.Code, appErr.Message)
	case KindNotFound:
		Error(c, http.StatusNotFound, appErr.Code, appErr.Message)
	case KindConflict:
		Error(c, http.StatusConflict, appErr.Code, appErr.Message)
	default:
		logger.Log.Error("Storage unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusServiceUnavailable, appErr.Code, "Service temporarily unavailable")
	}
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	Error(c, http.StatusInternalServerError, CodeStorageUnavailable, "Internal server error")
}
