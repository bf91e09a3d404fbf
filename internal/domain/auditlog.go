package domain

import "time"

// 审计事件类型。
const (
	EventMeetingCreated    = "meeting_created"
	EventStatusChanged     = "status_changed"
	EventAttendeeCheckedIn = "attendee_checked_in"
	EventDuplicateRejected = "duplicate_rejected"
)

// AuditLog 记录会议生命周期和签到过程中的关键事件。
// 由 worker 异步写入，写入失败不影响主流程。
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MeetingID  string    `gorm:"size:32;index;not null" json:"meeting_id"`
	AttendeeID string    `gorm:"size:32" json:"attendee_id,omitempty"` // 与签到无关的事件为空
	Event      string    `gorm:"size:64;not null" json:"event"`
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
