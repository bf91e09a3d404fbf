package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// GormMeetingRepository 是 MeetingRepository 接口的 GORM 实现
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository 创建 GormMeetingRepository 实例
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMeetingRepository")
	}
	return &GormMeetingRepository{db: db}
}

// FindByID 实现根据会议 ID 查找会议
func (r *GormMeetingRepository) FindByID(ctx context.Context, id string) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("gorm: find meeting by id '%s': %w", id, err)
	}
	return &meeting, nil
}

// Save 实现保存会议信息（创建或更新）
func (r *GormMeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	result := r.db.WithContext(ctx).Save(meeting)
	if err := result.Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save meeting (id: %s): %w", meeting.ID, err)
	}
	return nil
}

// FindByStatus 实现查询处于指定状态的所有会议
func (r *GormMeetingRepository) FindByStatus(ctx context.Context, status string) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find meetings by status '%s': %w", status, err)
	}
	return meetings, nil
}

// IsIDExists 实现检查会议 ID 是否存在
func (r *GormMeetingRepository) IsIDExists(ctx context.Context, id string) (bool, error) {
	var count int64
	// 使用 Count() 优化查询，只查询数量
	err := r.db.WithContext(ctx).Model(&domain.Meeting{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count meetings by id '%s': %w", id, err)
	}
	return count > 0, nil
}
