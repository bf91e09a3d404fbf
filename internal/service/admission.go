package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// AdmissionService 负责签到 (attendance) 相关的业务逻辑。
type AdmissionService struct {
	meetingRepo  repository.MeetingRepository
	attendeeRepo repository.AttendeeRepository
	stateRepo    repository.StateRepository
	audit        AuditQueue
}

// NewAdmissionService 创建 AdmissionService 实例。
func NewAdmissionService(
	meetingRepo repository.MeetingRepository,
	attendeeRepo repository.AttendeeRepository,
	stateRepo repository.StateRepository,
	audit AuditQueue,
) *AdmissionService {
	if meetingRepo == nil {
		panic("MeetingRepository cannot be nil for AdmissionService")
	}
	if attendeeRepo == nil {
		panic("AttendeeRepository cannot be nil for AdmissionService")
	}
	return &AdmissionService{
		meetingRepo:  meetingRepo,
		attendeeRepo: attendeeRepo,
		stateRepo:    stateRepo,
		audit:        audit,
	}
}

// RecordAttendance 为 ACTIVE 状态的会议记录一条签到。
// 同一设备 (ipHash) 对同一会议的重复提交由存储层唯一索引拦截，
// 翻译为 ErrAlreadyCheckedIn —— 调用方应将其视为幂等成功而非失败。
func (s *AdmissionService) RecordAttendance(ctx context.Context, meetingID, name, signature, ipHash string) (*domain.Attendee, error) {
	logCtx := logrus.WithFields(logrus.Fields{"meeting_id": meetingID, "ip_hash": ipHash})

	// 1. 输入校验
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if strings.TrimSpace(ipHash) == "" {
		return nil, fmt.Errorf("%w: device fingerprint is required", ErrValidationFailed)
	}
	if err := validateSignature(signature); err != nil {
		logCtx.WithError(err).Warn("RecordAttendance: Signature rejected")
		return nil, err
	}

	// 2. 会议必须存在且处于 ACTIVE 状态
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingNotFound) {
			logCtx.Warn("RecordAttendance: Meeting not found")
			return nil, ErrMeetingNotFound
		}
		logCtx.WithError(err).Error("RecordAttendance: Repository error finding meeting")
		return nil, ErrInternalServer
	}
	if meeting.Status != domain.StatusActive {
		// PENDING 或 ENDED 状态下直接拒绝，不排队等待
		logCtx.WithField("status", meeting.Status).Warn("RecordAttendance: Meeting not active")
		return nil, ErrMeetingNotActive
	}

	// 3. 插入签到记录；先读后写的竞态由唯一索引兜底
	attendeeID, err := generateAttendeeID()
	if err != nil {
		logCtx.WithError(err).Error("RecordAttendance: Failed to generate attendee id")
		return nil, ErrInternalServer
	}
	attendee := &domain.Attendee{
		ID:        attendeeID,
		MeetingID: meetingID,
		Name:      name,
		Signature: signature,
		IPHash:    ipHash,
		Timestamp: time.Now(),
	}
	if err := s.attendeeRepo.Save(ctx, attendee); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Info("RecordAttendance: Duplicate submission suppressed")
			recordAudit(ctx, s.audit, domain.AuditLog{
				MeetingID: meetingID,
				Event:     domain.EventDuplicateRejected,
				Detail:    name,
			})
			return nil, ErrAlreadyCheckedIn
		}
		logCtx.WithError(err).Error("RecordAttendance: Failed to save attendee")
		return nil, ErrInternalServer
	}

	// 4. 旁路更新：实时计数和审计日志都是尽力而为
	if s.stateRepo != nil {
		if err := s.stateRepo.IncrCheckinCount(ctx, meetingID, attendee.Timestamp); err != nil {
			logCtx.WithError(err).Warn("RecordAttendance: Failed to update live counter")
		}
	}
	recordAudit(ctx, s.audit, domain.AuditLog{
		MeetingID:  meetingID,
		AttendeeID: attendee.ID,
		Event:      domain.EventAttendeeCheckedIn,
		Detail:     name,
	})

	logCtx.WithField("attendee_id", attendee.ID).Info("Attendance recorded")
	return attendee, nil
}
