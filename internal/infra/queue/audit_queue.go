// Package queue 提供服务层 AuditQueue 接口的 asynq 实现。
package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"attendance-now/internal/domain"
	"attendance-now/internal/tasks"
)

// AsynqAuditQueue 将审计事件投递到 asynq 的低优先级队列，
// 由 worker 异步落库。
type AsynqAuditQueue struct {
	client *asynq.Client
}

// NewAsynqAuditQueue 创建 AsynqAuditQueue 实例
func NewAsynqAuditQueue(client *asynq.Client) *AsynqAuditQueue {
	if client == nil {
		panic("asynq client cannot be nil for AsynqAuditQueue")
	}
	return &AsynqAuditQueue{client: client}
}

// EnqueueAudit 实现 service.AuditQueue 接口
func (q *AsynqAuditQueue) EnqueueAudit(ctx context.Context, entry domain.AuditLog) error {
	task, err := tasks.NewAuditPersistenceTask(entry)
	if err != nil {
		return fmt.Errorf("failed to build audit task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
		return fmt.Errorf("failed to enqueue audit task: %w", err)
	}
	return nil
}
