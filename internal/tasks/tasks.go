package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"attendance-now/internal/domain"
)

// 定义任务类型常量
const (
	// TypeAuditPersistence 审计日志落库任务
	TypeAuditPersistence = "audit:persist"
	// TypeCounterReconcile 周期性签到计数校准任务
	TypeCounterReconcile = "counter:reconcile"
)

// AuditPersistencePayload 定义了审计落库任务的数据结构
type AuditPersistencePayload struct {
	Entry domain.AuditLog
}

// NewAuditPersistenceTask 创建一个新的审计落库任务
func NewAuditPersistenceTask(entry domain.AuditLog) (*asynq.Task, error) {
	payload := AuditPersistencePayload{Entry: entry}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAuditPersistence, payloadBytes), nil
}

// NewCounterReconcileTask 创建一个计数校准任务 (无负载)
func NewCounterReconcileTask() *asynq.Task {
	return asynq.NewTask(TypeCounterReconcile, nil)
}
