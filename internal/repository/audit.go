package repository

import (
	"context"

	"attendance-now/internal/domain"
)

// AuditRepository 定义了审计日志的持久化操作。
type AuditRepository interface {
	// SaveBatch 批量保存审计日志条目。
	SaveBatch(ctx context.Context, entries []domain.AuditLog) error
}
