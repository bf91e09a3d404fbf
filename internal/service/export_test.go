package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository/mocks"
)

func newExportServiceForTest() (*ExportService, *mocks.MeetingRepository, *mocks.AttendeeRepository) {
	meetingRepo := new(mocks.MeetingRepository)
	attendeeRepo := new(mocks.AttendeeRepository)
	svc := NewExportService(meetingRepo, attendeeRepo)
	return svc, meetingRepo, attendeeRepo
}

func TestExportService_ExportAttendees_CSV(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo := newExportServiceForTest()
	ctx := context.Background()
	secret := "admin-secret"
	meeting := &domain.Meeting{
		ID:              "MEETING001",
		Title:           "Quarterly Review",
		AdminSecretHash: mustHash(t, secret),
		Status:          domain.StatusEnded,
	}
	t1 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(3 * time.Minute)
	attendees := []domain.Attendee{
		{ID: "a1", MeetingID: "MEETING001", Name: "Alice", Timestamp: t1},
		{ID: "a2", MeetingID: "MEETING001", Name: "Bob, Jr.", Timestamp: t2},
	}
	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("FindByMeeting", ctx, "MEETING001").Return(attendees, nil).Once()

	// Act
	result, err := svc.ExportAttendees(ctx, "MEETING001", secret, "csv")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "attendance-MEETING001.csv", result.Filename)

	records, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	require.NoError(t, err, "导出内容应是合法的 CSV")
	require.Len(t, records, 3, "表头加两行数据")
	assert.Equal(t, []string{"name", "timestamp"}, records[0])
	assert.Equal(t, []string{"Alice", t1.Format(time.RFC3339)}, records[1])
	assert.Equal(t, []string{"Bob, Jr.", t2.Format(time.RFC3339)}, records[2], "包含逗号的姓名应被正确转义")
}

func TestExportService_ExportAttendees_PDF(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo := newExportServiceForTest()
	ctx := context.Background()
	secret := "admin-secret"
	meeting := &domain.Meeting{
		ID:              "MEETING001",
		Title:           "Quarterly Review",
		AdminSecretHash: mustHash(t, secret),
		Status:          domain.StatusEnded,
	}
	attendees := []domain.Attendee{
		{ID: "a1", MeetingID: "MEETING001", Name: "Alice", Timestamp: time.Now()},
	}
	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("FindByMeeting", ctx, "MEETING001").Return(attendees, nil).Once()

	// Act
	result, err := svc.ExportAttendees(ctx, "MEETING001", secret, "pdf")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "attendance-MEETING001.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF-"), "应生成合法的 PDF 文件头")
}

func TestExportService_ExportAttendees_WrongSecret(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo := newExportServiceForTest()
	ctx := context.Background()
	meeting := &domain.Meeting{
		ID:              "MEETING001",
		AdminSecretHash: mustHash(t, "correct-secret"),
		Status:          domain.StatusEnded,
	}
	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()

	// Act
	result, err := svc.ExportAttendees(ctx, "MEETING001", "wrong-secret", "csv")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, result)
	attendeeRepo.AssertNotCalled(t, "FindByMeeting", ctx, "MEETING001")
}

func TestExportService_ExportAttendees_InvalidFormat(t *testing.T) {
	// Arrange
	svc, meetingRepo, _ := newExportServiceForTest()

	// Act
	result, err := svc.ExportAttendees(context.Background(), "MEETING001", "secret", "xlsx")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExportFormat)
	assert.Nil(t, result)
	meetingRepo.AssertNotCalled(t, "FindByID", context.Background(), "MEETING001")
}

func TestExportService_ExportAttendees_EmptyMeetingCSV(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo := newExportServiceForTest()
	ctx := context.Background()
	secret := "admin-secret"
	meeting := &domain.Meeting{
		ID:              "MEETING001",
		AdminSecretHash: mustHash(t, secret),
		Status:          domain.StatusPending,
	}
	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("FindByMeeting", ctx, "MEETING001").Return([]domain.Attendee{}, nil).Once()

	// Act
	result, err := svc.ExportAttendees(ctx, "MEETING001", secret, "csv")

	// Assert
	require.NoError(t, err, "空会议导出应成功，只含表头")
	records, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"name", "timestamp"}, records[0])
}
