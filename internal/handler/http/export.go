package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/service"
)

// ExportHandler 封装了签到记录导出的 HTTP 处理逻辑
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export 处理导出请求，直接回写二进制流。
// 路径参数 :type 取值 csv 或 pdf，管理密钥通过 query 参数传递。
func (h *ExportHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := c.Param("type")
	secret := c.Query("admin_secret")

	result, err := h.exportService.ExportAttendees(c.Request.Context(), id, secret, format)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"meeting_id": id, "format": format}).Info("Handler.Export: Export downloaded")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
