package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attendance-now/internal/domain"
)

// MeetingRepository 是 repository.MeetingRepository 的 mock 实现
type MeetingRepository struct {
	mock.Mock
}

func (m *MeetingRepository) FindByID(ctx context.Context, id string) (*domain.Meeting, error) {
	args := m.Called(ctx, id)
	var meeting *domain.Meeting
	if args.Get(0) != nil {
		meeting = args.Get(0).(*domain.Meeting)
	}
	return meeting, args.Error(1)
}

func (m *MeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MeetingRepository) FindByStatus(ctx context.Context, status string) ([]domain.Meeting, error) {
	args := m.Called(ctx, status)
	var meetings []domain.Meeting
	if args.Get(0) != nil {
		meetings = args.Get(0).([]domain.Meeting)
	}
	return meetings, args.Error(1)
}

func (m *MeetingRepository) IsIDExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
