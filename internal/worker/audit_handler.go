package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
	"attendance-now/internal/tasks"
)

// AuditPersistenceHandler 处理审计日志落库任务
type AuditPersistenceHandler struct {
	auditRepo repository.AuditRepository
}

// NewAuditPersistenceHandler 创建 Handler 实例
func NewAuditPersistenceHandler(auditRepo repository.AuditRepository) *AuditPersistenceHandler {
	return &AuditPersistenceHandler{auditRepo: auditRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *AuditPersistenceHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)

	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
	})

	var payload tasks.AuditPersistencePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal audit task payload")
		// 负载损坏重试也无济于事
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.auditRepo.SaveBatch(ctx, []domain.AuditLog{payload.Entry}); err != nil {
		logCtx.WithError(err).Errorf("Failed to save audit entry (event %s)", payload.Entry.Event)
		return fmt.Errorf("failed to save audit entry: %w", err)
	}

	logCtx.WithFields(logrus.Fields{
		"meeting_id": payload.Entry.MeetingID,
		"event":      payload.Entry.Event,
	}).Debug("Audit entry persisted")
	return nil
}
