package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/service"
)

// HandleServiceError 将服务层错误映射为 HTTP 状态码。
// 每个领域错误对应且只对应一个状态码。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMeetingNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrMeetingNotActive):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn), errors.Is(err, service.ErrInvalidTransition):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidExportFormat):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		// 内部错误细节只进日志，不回传客户端
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
