package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
)

// AuditQueue 定义审计事件的投递接口。
// 具体实现将事件排入任务队列，由 worker 异步落库。
type AuditQueue interface {
	EnqueueAudit(ctx context.Context, entry domain.AuditLog) error
}

// recordAudit 尽力投递一条审计事件。
// 审计是旁路功能：投递失败只记录日志，不影响主流程。
func recordAudit(ctx context.Context, queue AuditQueue, entry domain.AuditLog) {
	if queue == nil {
		return
	}
	if err := queue.EnqueueAudit(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"meeting_id": entry.MeetingID,
			"event":      entry.Event,
		}).Warn("Failed to enqueue audit entry")
	}
}
