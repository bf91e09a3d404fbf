package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/service"
)

// AttendHandler 封装了签到提交的 HTTP 处理逻辑
type AttendHandler struct {
	admissionService *service.AdmissionService
}

// NewAttendHandler 创建 AttendHandler 实例
func NewAttendHandler(admissionService *service.AdmissionService) *AttendHandler {
	return &AttendHandler{admissionService: admissionService}
}

// AttendRequest 定义签到请求的结构体。
// IPHash 是客户端自行生成并持久化的设备指纹，仅用于尽力去重。
type AttendRequest struct {
	MeetingID string `json:"meeting_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	IPHash    string `json:"ip_hash" binding:"required"`
}

// AttendResponse 定义签到成功的响应结构体
type AttendResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Attend 处理签到提交。
// 重复提交返回 409，客户端将其视为"已签到"的成功结果。
func (h *AttendHandler) Attend(c *gin.Context) {
	var req AttendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Attend: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: meeting_id, name, signature and ip_hash are required")
		return
	}

	attendee, err := h.admissionService.RecordAttendance(c.Request.Context(), req.MeetingID, req.Name, req.Signature, req.IPHash)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, AttendResponse{
		ID:        attendee.ID,
		Name:      attendee.Name,
		Timestamp: attendee.Timestamp,
	})
}
