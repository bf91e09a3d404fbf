package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// CounterReconcileHandler 周期性地用数据库中的真实计数
// 覆盖 Redis 中的实时签到计数，消除尽力写入造成的漂移。
type CounterReconcileHandler struct {
	meetingRepo  repository.MeetingRepository
	attendeeRepo repository.AttendeeRepository
	stateRepo    repository.StateRepository
}

// NewCounterReconcileHandler 创建 Handler 实例
func NewCounterReconcileHandler(
	meetingRepo repository.MeetingRepository,
	attendeeRepo repository.AttendeeRepository,
	stateRepo repository.StateRepository,
) *CounterReconcileHandler {
	return &CounterReconcileHandler{
		meetingRepo:  meetingRepo,
		attendeeRepo: attendeeRepo,
		stateRepo:    stateRepo,
	}
}

// ProcessTask 实现 asynq.Handler 接口。
// 只校准 ACTIVE 会议：PENDING 没有签到，ENDED 不再被轮询。
func (h *CounterReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	meetings, err := h.meetingRepo.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		logCtx.WithError(err).Error("Counter reconcile: failed to list active meetings")
		return fmt.Errorf("failed to list active meetings: %w", err)
	}

	var reconciled int
	for _, meeting := range meetings {
		count, err := h.attendeeRepo.CountByMeeting(ctx, meeting.ID)
		if err != nil {
			logCtx.WithError(err).WithField("meeting_id", meeting.ID).Warn("Counter reconcile: count query failed")
			continue
		}
		if err := h.stateRepo.SetCheckinCount(ctx, meeting.ID, count); err != nil {
			logCtx.WithError(err).WithField("meeting_id", meeting.ID).Warn("Counter reconcile: redis write failed")
			continue
		}
		reconciled++
	}

	logCtx.WithFields(logrus.Fields{
		"active_meetings": len(meetings),
		"reconciled":      reconciled,
	}).Info("Check-in counters reconciled")
	return nil
}
