package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/service"
)

// MeetingHandler 封装了会议生命周期相关的 HTTP 处理逻辑
type MeetingHandler struct {
	meetingService *service.MeetingService
}

// NewMeetingHandler 创建 MeetingHandler 实例
func NewMeetingHandler(meetingService *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// CreateMeetingRequest 定义创建会议请求的结构体
type CreateMeetingRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateMeetingResponse 定义创建会议成功的响应结构体。
// AdminSecret 明文只在这里返回一次。
type CreateMeetingResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	AdminSecret string `json:"admin_secret"`
}

// MeetingView 是会议的公开视图，绝不包含密钥信息
type MeetingView struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// CreateMeeting 处理创建新会议的请求
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateMeeting: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: title is required")
		return
	}

	meeting, secret, err := h.meetingService.CreateMeeting(c.Request.Context(), req.Title)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithField("meeting_id", meeting.ID).Info("Handler.CreateMeeting: Meeting created successfully")
	SuccessResponse(c, http.StatusCreated, CreateMeetingResponse{
		ID:          meeting.ID,
		Title:       meeting.Title,
		Status:      meeting.Status,
		AdminSecret: secret,
	})
}

// GetMeeting 处理查询会议公开信息的请求
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	id := c.Param("id")

	meeting, err := h.meetingService.GetMeeting(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, MeetingView{
		ID:     meeting.ID,
		Title:  meeting.Title,
		Status: meeting.Status,
	})
}

// SetStatusRequest 定义状态变更请求的结构体
type SetStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	AdminSecret string `json:"admin_secret" binding:"required"`
}

// SetStatus 处理会议状态变更的请求
func (h *MeetingHandler) SetStatus(c *gin.Context) {
	id := c.Param("id")

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).WithField("meeting_id", id).Warn("Handler.SetStatus: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: status and admin_secret are required")
		return
	}

	meeting, err := h.meetingService.SetStatus(c.Request.Context(), id, req.AdminSecret, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, MeetingView{
		ID:     meeting.ID,
		Title:  meeting.Title,
		Status: meeting.Status,
	})
}

// AttendeeView 是签到记录的管理端视图 (不含设备指纹)
type AttendeeView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
}

// ListAttendees 处理管理端查询签到列表的请求。
// 管理密钥通过 query 参数传递。
func (h *MeetingHandler) ListAttendees(c *gin.Context) {
	id := c.Param("id")
	secret := c.Query("admin_secret")

	attendees, err := h.meetingService.ListAttendees(c.Request.Context(), id, secret)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	views := make([]AttendeeView, 0, len(attendees))
	for _, att := range attendees {
		views = append(views, AttendeeView{
			ID:        att.ID,
			Name:      att.Name,
			Signature: att.Signature,
			Timestamp: att.Timestamp,
		})
	}
	SuccessResponse(c, http.StatusOK, views)
}

// GetStats 处理管理端查询实时签到统计的请求
func (h *MeetingHandler) GetStats(c *gin.Context) {
	id := c.Param("id")
	secret := c.Query("admin_secret")

	stats, err := h.meetingService.GetStats(c.Request.Context(), id, secret)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, stats)
}
