package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// StateRepository 是 repository.StateRepository 的 mock 实现
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) IncrCheckinCount(ctx context.Context, meetingID string, at time.Time) error {
	args := m.Called(ctx, meetingID, at)
	return args.Error(0)
}

func (m *StateRepository) GetCheckinStats(ctx context.Context, meetingID string) (int64, time.Time, error) {
	args := m.Called(ctx, meetingID)
	return args.Get(0).(int64), args.Get(1).(time.Time), args.Error(2)
}

func (m *StateRepository) SetCheckinCount(ctx context.Context, meetingID string, count int64) error {
	args := m.Called(ctx, meetingID, count)
	return args.Error(0)
}
