package gormpersistence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// GormAttendeeRepository 是 AttendeeRepository 接口的 GORM 实现
type GormAttendeeRepository struct {
	db *gorm.DB
}

// NewGormAttendeeRepository 创建 GormAttendeeRepository 实例
func NewGormAttendeeRepository(db *gorm.DB) *GormAttendeeRepository {
	if db == nil {
		panic("database connection cannot be nil for GormAttendeeRepository")
	}
	return &GormAttendeeRepository{db: db}
}

// Save 实现插入一条签到记录。
// 并发的重复提交由 (meeting_id, ip_hash) 唯一索引拦截，
// 这里将约束冲突映射为 repository.ErrDuplicateEntry。
func (r *GormAttendeeRepository) Save(ctx context.Context, attendee *domain.Attendee) error {
	result := r.db.WithContext(ctx).Create(attendee)
	if err := result.Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save attendee (meeting: %s, ip_hash: %s): %w", attendee.MeetingID, attendee.IPHash, err)
	}
	return nil
}

// FindByMeeting 实现按签到时间升序返回指定会议的全部签到记录
func (r *GormAttendeeRepository) FindByMeeting(ctx context.Context, meetingID string) ([]domain.Attendee, error) {
	var attendees []domain.Attendee
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("timestamp ASC").
		Find(&attendees).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find attendees by meeting '%s': %w", meetingID, err)
	}
	return attendees, nil
}

// CountByMeeting 实现返回指定会议的签到记录数
func (r *GormAttendeeRepository) CountByMeeting(ctx context.Context, meetingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Attendee{}).Where("meeting_id = ?", meetingID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count attendees by meeting '%s': %w", meetingID, err)
	}
	return count, nil
}

// isDuplicateEntryError 检查常见的唯一约束错误字符串。
// SQLite 驱动没有导出结构化的约束错误码，这里按消息片段匹配。
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
