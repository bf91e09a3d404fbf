package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// MeetingService 负责会议生命周期相关的业务逻辑。
type MeetingService struct {
	meetingRepo  repository.MeetingRepository
	attendeeRepo repository.AttendeeRepository
	stateRepo    repository.StateRepository
	audit        AuditQueue
	// strictTransitions 控制状态转换策略：
	// true  时只允许 PENDING→ACTIVE 和 ACTIVE→ENDED (同值写入视为幂等成功)；
	// false 时任何通过密钥验证的覆盖写入都被接受。
	strictTransitions bool
}

// NewMeetingService 创建 MeetingService 实例。
func NewMeetingService(
	meetingRepo repository.MeetingRepository,
	attendeeRepo repository.AttendeeRepository,
	stateRepo repository.StateRepository,
	audit AuditQueue,
	strictTransitions bool,
) *MeetingService {
	if meetingRepo == nil {
		panic("MeetingRepository cannot be nil for MeetingService")
	}
	if attendeeRepo == nil {
		panic("AttendeeRepository cannot be nil for MeetingService")
	}
	return &MeetingService{
		meetingRepo:       meetingRepo,
		attendeeRepo:      attendeeRepo,
		stateRepo:         stateRepo,
		audit:             audit,
		strictTransitions: strictTransitions,
	}
}

// MeetingStats 是仪表盘轮询用的轻量统计视图。
type MeetingStats struct {
	Count         int64      `json:"count"`
	LastCheckinAt *time.Time `json:"last_checkin_at,omitempty"`
}

// CreateMeeting 创建一个新会议并返回会议记录和管理密钥明文。
// 这是密钥明文唯一一次出现在返回值中的地方。
func (s *MeetingService) CreateMeeting(ctx context.Context, title string) (*domain.Meeting, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, "", fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	logCtx := logrus.WithField("title", title)

	// 1. 生成唯一的会议 ID
	id, err := s.generateUniqueMeetingID(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate unique meeting id")
		return nil, "", ErrInternalServer
	}
	logCtx = logCtx.WithField("meeting_id", id)

	// 2. 生成管理密钥并哈希存储
	secret, err := generateAdminSecret()
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate admin secret")
		return nil, "", ErrInternalServer
	}
	secretHash, err := hashAdminSecret(secret)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash admin secret")
		return nil, "", ErrInternalServer
	}

	// 3. 创建会议对象并保存
	meeting := &domain.Meeting{
		ID:              id,
		Title:           title,
		AdminSecretHash: secretHash,
		Status:          domain.StatusPending,
	}
	if err := s.meetingRepo.Save(ctx, meeting); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// ID 唯一性已经在生成时检查过，冲突视为内部错误
			logCtx.WithError(err).Error("Failed to save new meeting due to duplicate entry (id conflict?)")
			return nil, "", ErrInternalServer
		}
		logCtx.WithError(err).Error("Failed to save new meeting to database")
		return nil, "", ErrInternalServer
	}

	recordAudit(ctx, s.audit, domain.AuditLog{
		MeetingID: meeting.ID,
		Event:     domain.EventMeetingCreated,
		Detail:    title,
	})

	logCtx.Info("Meeting created successfully")
	return meeting, secret, nil
}

// GetMeeting 返回会议的公开信息。密钥及其哈希不会出现在任何读取路径中。
func (s *MeetingService) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingNotFound) {
			logrus.WithField("meeting_id", id).Warn("GetMeeting: Meeting not found")
			return nil, ErrMeetingNotFound
		}
		logrus.WithError(err).WithField("meeting_id", id).Error("GetMeeting: Repository error")
		return nil, ErrInternalServer
	}
	if meeting == nil { // 防御性检查
		return nil, ErrMeetingNotFound
	}
	return meeting, nil
}

// SetStatus 验证管理密钥后将会议状态更新为 newStatus。
// 转换合法性由 strictTransitions 策略决定。
func (s *MeetingService) SetStatus(ctx context.Context, id, secret, newStatus string) (*domain.Meeting, error) {
	logCtx := logrus.WithFields(logrus.Fields{"meeting_id": id, "new_status": newStatus})

	if !domain.ValidStatus(newStatus) {
		logCtx.Warn("SetStatus: Invalid status value")
		return nil, fmt.Errorf("%w: status must be one of PENDING, ACTIVE, ENDED", ErrInvalidStatus)
	}

	meeting, err := authorizeMeeting(ctx, s.meetingRepo, id, secret)
	if err != nil {
		logCtx.WithError(err).Warn("SetStatus: Authorization failed")
		return nil, err
	}

	if meeting.Status == newStatus {
		// 多个管理页签并发点击时的重复写入，幂等处理
		return meeting, nil
	}
	if s.strictTransitions && !legalTransition(meeting.Status, newStatus) {
		logCtx.WithField("current_status", meeting.Status).Warn("SetStatus: Illegal transition rejected")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, meeting.Status, newStatus)
	}

	oldStatus := meeting.Status
	meeting.Status = newStatus
	if err := s.meetingRepo.Save(ctx, meeting); err != nil {
		logCtx.WithError(err).Error("SetStatus: Failed to persist status change")
		return nil, ErrInternalServer
	}

	recordAudit(ctx, s.audit, domain.AuditLog{
		MeetingID: meeting.ID,
		Event:     domain.EventStatusChanged,
		Detail:    oldStatus + " -> " + newStatus,
	})

	logCtx.WithField("old_status", oldStatus).Info("Meeting status updated")
	return meeting, nil
}

// ListAttendees 验证管理密钥后返回会议的全部签到记录 (按签到时间升序)。
func (s *MeetingService) ListAttendees(ctx context.Context, id, secret string) ([]domain.Attendee, error) {
	logCtx := logrus.WithField("meeting_id", id)

	if _, err := authorizeMeeting(ctx, s.meetingRepo, id, secret); err != nil {
		logCtx.WithError(err).Warn("ListAttendees: Authorization failed")
		return nil, err
	}

	attendees, err := s.attendeeRepo.FindByMeeting(ctx, id)
	if err != nil {
		logCtx.WithError(err).Error("ListAttendees: Repository error")
		return nil, ErrInternalServer
	}
	return attendees, nil
}

// GetStats 验证管理密钥后返回 Redis 中的实时签到统计。
func (s *MeetingService) GetStats(ctx context.Context, id, secret string) (*MeetingStats, error) {
	logCtx := logrus.WithField("meeting_id", id)

	if _, err := authorizeMeeting(ctx, s.meetingRepo, id, secret); err != nil {
		logCtx.WithError(err).Warn("GetStats: Authorization failed")
		return nil, err
	}
	if s.stateRepo == nil {
		return &MeetingStats{}, nil
	}

	count, last, err := s.stateRepo.GetCheckinStats(ctx, id)
	if err != nil {
		logCtx.WithError(err).Error("GetStats: State repository error")
		return nil, ErrInternalServer
	}
	stats := &MeetingStats{Count: count}
	if !last.IsZero() {
		stats.LastCheckinAt = &last
	}
	return stats, nil
}

// legalTransition 判断严格策略下 from → to 是否合法。
// 状态单向推进：PENDING→ACTIVE→ENDED，不允许跳过或回退。
func legalTransition(from, to string) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusActive
	case domain.StatusActive:
		return to == domain.StatusEnded
	default:
		return false
	}
}

// generateUniqueMeetingID 生成唯一的会议 ID
func (s *MeetingService) generateUniqueMeetingID(ctx context.Context) (string, error) {
	b := make([]byte, meetingIDLength)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = meetingIDCharset[int(b[i])%len(meetingIDCharset)]
		}
		id := string(b)

		exists, err := s.meetingRepo.IsIDExists(ctx, id)
		if err != nil {
			logrus.WithError(err).WithField("meeting_id", id).Error("Database error checking meeting id uniqueness")
			return "", fmt.Errorf("database error checking meeting id: %w", err)
		}
		if !exists {
			return id, nil
		}
		logrus.WithField("meeting_id", id).Warnf("Generated meeting id already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique meeting id after %d attempts", maxIDAttempts)
}
