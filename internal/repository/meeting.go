package repository

import (
	"context"

	"attendance-now/internal/domain"
)

// MeetingRepository 定义了会议数据的存储和检索操作。
type MeetingRepository interface {
	// FindByID 根据会议 ID 查找会议。
	// 如果会议不存在，应返回 ErrMeetingNotFound。
	FindByID(ctx context.Context, id string) (*domain.Meeting, error)

	// Save 保存会议信息。
	// 如果会议已存在 (基于 ID)，则更新；否则创建新会议。
	Save(ctx context.Context, meeting *domain.Meeting) error

	// FindByStatus 查询处于指定状态的所有会议。
	// 主要用于周期性计数器校准任务。
	FindByStatus(ctx context.Context, status string) ([]domain.Meeting, error)

	// IsIDExists 检查会议 ID 是否已存在。
	IsIDExists(ctx context.Context, id string) (bool, error)
}
