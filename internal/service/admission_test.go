package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
	"attendance-now/internal/repository/mocks"
)

// validTestSignature 构造一个满足最小尺寸要求的签名 data-URL
func validTestSignature() string {
	payload := bytes.Repeat([]byte{0xAB}, minSignatureBytes*2)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func newAdmissionServiceForTest() (*AdmissionService, *mocks.MeetingRepository, *mocks.AttendeeRepository, *mocks.StateRepository, *mockAuditQueue) {
	meetingRepo := new(mocks.MeetingRepository)
	attendeeRepo := new(mocks.AttendeeRepository)
	stateRepo := new(mocks.StateRepository)
	audit := new(mockAuditQueue)
	svc := NewAdmissionService(meetingRepo, attendeeRepo, stateRepo, audit)
	return svc, meetingRepo, attendeeRepo, stateRepo, audit
}

func TestAdmissionService_RecordAttendance_Success(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo, stateRepo, audit := newAdmissionServiceForTest()
	ctx := context.Background()
	meeting := &domain.Meeting{ID: "MEETING001", Status: domain.StatusActive}

	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("Save", ctx, mock.AnythingOfType("*domain.Attendee")).Return(nil).Once()
	stateRepo.On("IncrCheckinCount", ctx, "MEETING001", mock.AnythingOfType("time.Time")).Return(nil).Once()
	audit.On("EnqueueAudit", ctx, mock.AnythingOfType("domain.AuditLog")).Return(nil).Once()

	// Act
	attendee, err := svc.RecordAttendance(ctx, "MEETING001", "  Alice  ", validTestSignature(), "device-hash-1")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, attendee)
	assert.Equal(t, "Alice", attendee.Name, "姓名应去除首尾空白")
	assert.Equal(t, "MEETING001", attendee.MeetingID)
	assert.NotEmpty(t, attendee.ID, "应生成不透明的签到记录 ID")
	assert.False(t, attendee.Timestamp.IsZero())
	meetingRepo.AssertExpectations(t)
	attendeeRepo.AssertExpectations(t)
	stateRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdmissionService_RecordAttendance_MeetingNotFound(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo, _, _ := newAdmissionServiceForTest()
	ctx := context.Background()
	meetingRepo.On("FindByID", ctx, "NOSUCHID01").Return(nil, repository.ErrMeetingNotFound).Once()

	// Act
	attendee, err := svc.RecordAttendance(ctx, "NOSUCHID01", "Alice", validTestSignature(), "device-hash-1")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
	assert.Nil(t, attendee)
	attendeeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdmissionService_RecordAttendance_MeetingNotActive(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "PENDING 会议拒绝签到", status: domain.StatusPending},
		{name: "ENDED 会议拒绝签到", status: domain.StatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc, meetingRepo, attendeeRepo, _, _ := newAdmissionServiceForTest()
			ctx := context.Background()
			meeting := &domain.Meeting{ID: "MEETING001", Status: tt.status}
			meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()

			// Act
			attendee, err := svc.RecordAttendance(ctx, "MEETING001", "Alice", validTestSignature(), "device-hash-1")

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMeetingNotActive)
			assert.Nil(t, attendee)
			attendeeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestAdmissionService_RecordAttendance_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		attName   string
		signature string
		ipHash    string
	}{
		{name: "空姓名", attName: "   ", signature: validTestSignature(), ipHash: "device-hash-1"},
		{name: "缺少设备指纹", attName: "Alice", signature: validTestSignature(), ipHash: ""},
		{name: "签名不是 data-URL", attName: "Alice", signature: "not-a-data-url", ipHash: "device-hash-1"},
		{name: "签名不是图片", attName: "Alice", signature: "data:text/plain;base64,aGVsbG8=", ipHash: "device-hash-1"},
		{name: "签名缺少图片子类型", attName: "Alice", signature: "data:image/;base64," + base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xAB}, minSignatureBytes*2)), ipHash: "device-hash-1"},
		{name: "签名负载过小", attName: "Alice", signature: "data:image/png;base64,aGVsbG8=", ipHash: "device-hash-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc, meetingRepo, attendeeRepo, _, _ := newAdmissionServiceForTest()

			// Act
			attendee, err := svc.RecordAttendance(context.Background(), "MEETING001", tt.attName, tt.signature, tt.ipHash)

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed, "输入校验失败应返回 ErrValidationFailed")
			assert.Nil(t, attendee)
			meetingRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			attendeeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestAdmissionService_RecordAttendance_DuplicateSuppressed(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo, stateRepo, audit := newAdmissionServiceForTest()
	ctx := context.Background()
	meeting := &domain.Meeting{ID: "MEETING001", Status: domain.StatusActive}

	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("Save", ctx, mock.AnythingOfType("*domain.Attendee")).Return(repository.ErrDuplicateEntry).Once()
	audit.On("EnqueueAudit", ctx, mock.MatchedBy(func(entry domain.AuditLog) bool {
		return entry.Event == domain.EventDuplicateRejected
	})).Return(nil).Once()

	// Act
	attendee, err := svc.RecordAttendance(ctx, "MEETING001", "Alice", validTestSignature(), "device-hash-1")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn, "唯一约束冲突应翻译为已签到")
	assert.Nil(t, attendee)
	stateRepo.AssertNotCalled(t, "IncrCheckinCount", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertExpectations(t)
}

func TestAdmissionService_RecordAttendance_CounterFailureIsNonFatal(t *testing.T) {
	// Arrange
	svc, meetingRepo, attendeeRepo, stateRepo, audit := newAdmissionServiceForTest()
	ctx := context.Background()
	meeting := &domain.Meeting{ID: "MEETING001", Status: domain.StatusActive}

	meetingRepo.On("FindByID", ctx, "MEETING001").Return(meeting, nil).Once()
	attendeeRepo.On("Save", ctx, mock.AnythingOfType("*domain.Attendee")).Return(nil).Once()
	stateRepo.On("IncrCheckinCount", ctx, "MEETING001", mock.AnythingOfType("time.Time")).Return(assert.AnError).Once()
	audit.On("EnqueueAudit", ctx, mock.AnythingOfType("domain.AuditLog")).Return(nil).Once()

	// Act
	attendee, err := svc.RecordAttendance(ctx, "MEETING001", "Alice", validTestSignature(), "device-hash-1")

	// Assert
	require.NoError(t, err, "实时计数失败不应影响签到主流程")
	require.NotNil(t, attendee)
	stateRepo.AssertExpectations(t)
}
