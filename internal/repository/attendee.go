package repository

import (
	"context"

	"attendance-now/internal/domain"
)

// AttendeeRepository 定义了签到记录的存储和检索操作。
type AttendeeRepository interface {
	// Save 插入一条新的签到记录。
	// 如果同一 (meeting_id, ip_hash) 已有记录，唯一约束会被触发，
	// 此时必须返回 ErrDuplicateEntry，由服务层翻译为"已签到"结果。
	Save(ctx context.Context, attendee *domain.Attendee) error

	// FindByMeeting 返回指定会议的全部签到记录，按签到时间升序排列。
	FindByMeeting(ctx context.Context, meetingID string) ([]domain.Attendee, error)

	// CountByMeeting 返回指定会议的签到记录数。
	CountByMeeting(ctx context.Context, meetingID string) (int64, error)
}
