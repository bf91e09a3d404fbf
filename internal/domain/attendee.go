package domain

import "time"

// Attendee 表示一条签到记录。记录创建后不可变更、不可删除。
// (meeting_id, ip_hash) 上的唯一索引在存储层保证同一设备对同一会议
// 至多只有一条记录。
type Attendee struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	MeetingID string    `gorm:"size:32;not null;index;uniqueIndex:idx_meeting_device" json:"meeting_id"` // 所属会议 ID
	Name      string    `gorm:"size:191;not null" json:"name"`                                           // 签到人姓名
	Signature string    `gorm:"type:text;not null" json:"signature"`                                     // 签名图片 (data-URL 编码的 PNG)
	IPHash    string    `gorm:"size:191;not null;uniqueIndex:idx_meeting_device" json:"-"`               // 客户端设备指纹，仅用于尽力去重
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`                                   // 签到时间
}
