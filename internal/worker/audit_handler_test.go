package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository/mocks"
	"attendance-now/internal/tasks"
)

func TestAuditPersistenceHandler_ProcessTask_Success(t *testing.T) {
	// Arrange
	auditRepo := new(mocks.AuditRepository)
	handler := NewAuditPersistenceHandler(auditRepo)
	ctx := context.Background()

	entry := domain.AuditLog{
		MeetingID:  "MEETING001",
		AttendeeID: "a1",
		Event:      domain.EventAttendeeCheckedIn,
		Detail:     "Alice",
	}
	task, err := tasks.NewAuditPersistenceTask(entry)
	require.NoError(t, err)

	auditRepo.On("SaveBatch", ctx, mock.MatchedBy(func(entries []domain.AuditLog) bool {
		return len(entries) == 1 &&
			entries[0].MeetingID == "MEETING001" &&
			entries[0].Event == domain.EventAttendeeCheckedIn
	})).Return(nil).Once()

	// Act
	err = handler.ProcessTask(ctx, task)

	// Assert
	require.NoError(t, err, "合法负载应成功落库")
	auditRepo.AssertExpectations(t)
}

func TestAuditPersistenceHandler_ProcessTask_CorruptPayloadSkipsRetry(t *testing.T) {
	// Arrange
	auditRepo := new(mocks.AuditRepository)
	handler := NewAuditPersistenceHandler(auditRepo)
	task := asynq.NewTask(tasks.TypeAuditPersistence, []byte("{not valid json"))

	// Act
	err := handler.ProcessTask(context.Background(), task)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry, "损坏的负载不应重试")
	auditRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
}

func TestAuditPersistenceHandler_ProcessTask_SaveFailureIsRetryable(t *testing.T) {
	// Arrange
	auditRepo := new(mocks.AuditRepository)
	handler := NewAuditPersistenceHandler(auditRepo)
	ctx := context.Background()

	task, err := tasks.NewAuditPersistenceTask(domain.AuditLog{
		MeetingID: "MEETING001",
		Event:     domain.EventMeetingCreated,
	})
	require.NoError(t, err)
	auditRepo.On("SaveBatch", ctx, mock.AnythingOfType("[]domain.AuditLog")).Return(assert.AnError).Once()

	// Act
	err = handler.ProcessTask(ctx, task)

	// Assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "落库失败应保留重试机会")
	auditRepo.AssertExpectations(t)
}
