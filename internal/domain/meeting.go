// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// 会议状态枚举值。状态只能沿 PENDING → ACTIVE → ENDED 单向推进
// (是否允许跳过 ACTIVE 由服务层的转换策略决定)。
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusEnded   = "ENDED"
)

// ValidStatus 判断给定字符串是否是合法的会议状态值。
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusActive || s == StatusEnded
}

// Meeting 表示一场一次性的考勤会议。
type Meeting struct {
	ID              string    `gorm:"primaryKey;size:32" json:"id"`              // 会议公开标识符 (用于 URL / 二维码)
	Title           string    `gorm:"size:191;not null" json:"title"`            // 会议标题
	AdminSecretHash string    `gorm:"type:text;not null" json:"-"`               // 管理密钥的 bcrypt 哈希，明文只在创建时返回一次
	Status          string    `gorm:"size:16;not null;default:PENDING;index" json:"status"` // 会议状态 (PENDING/ACTIVE/ENDED)
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"-"`
}
