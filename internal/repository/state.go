package repository

import (
	"context"
	"time"
)

// StateRepository 定义了会议实时状态 (签到计数等) 的存取操作。
// 该状态是数据库的派生视图，仅作为轮询读取的快速路径，
// 允许短暂不一致，由周期性任务与数据库校准。
type StateRepository interface {
	// IncrCheckinCount 递增指定会议的签到计数并记录最近签到时间。
	IncrCheckinCount(ctx context.Context, meetingID string, at time.Time) error

	// GetCheckinStats 返回指定会议的签到计数和最近签到时间。
	// 没有任何记录时返回 (0, 零值时间, nil)。
	GetCheckinStats(ctx context.Context, meetingID string) (int64, time.Time, error)

	// SetCheckinCount 将签到计数覆盖为给定值 (校准用)。
	SetCheckinCount(ctx context.Context, meetingID string, count int64) error
}
