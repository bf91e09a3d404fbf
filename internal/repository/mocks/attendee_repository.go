package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attendance-now/internal/domain"
)

// AttendeeRepository 是 repository.AttendeeRepository 的 mock 实现
type AttendeeRepository struct {
	mock.Mock
}

func (m *AttendeeRepository) Save(ctx context.Context, attendee *domain.Attendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *AttendeeRepository) FindByMeeting(ctx context.Context, meetingID string) ([]domain.Attendee, error) {
	args := m.Called(ctx, meetingID)
	var attendees []domain.Attendee
	if args.Get(0) != nil {
		attendees = args.Get(0).([]domain.Attendee)
	}
	return attendees, args.Error(1)
}

func (m *AttendeeRepository) CountByMeeting(ctx context.Context, meetingID string) (int64, error) {
	args := m.Called(ctx, meetingID)
	return args.Get(0).(int64), args.Error(1)
}
