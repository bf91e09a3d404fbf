package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"attendance-now/internal/domain"
)

// GormAuditRepository 是 AuditRepository 接口的 GORM 实现
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository 创建 GormAuditRepository 实例
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	if db == nil {
		panic("database connection cannot be nil for GormAuditRepository")
	}
	return &GormAuditRepository{db: db}
}

// SaveBatch 实现批量保存审计日志条目
func (r *GormAuditRepository) SaveBatch(ctx context.Context, entries []domain.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("gorm: save audit batch (size %d): %w", len(entries), err)
	}
	return nil
}
