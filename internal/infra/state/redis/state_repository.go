package redisstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStateRepository 是 StateRepository 接口的 Redis 实现。
// 每个会议使用两个 key：
//
//	<prefix>checkin:count:<meeting_id>  签到计数
//	<prefix>checkin:last:<meeting_id>   最近签到时间 (Unix 纳秒)
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository 创建 RedisStateRepository 实例
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	return &RedisStateRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStateRepository) countKey(meetingID string) string {
	return r.keyPrefix + "checkin:count:" + meetingID
}

func (r *RedisStateRepository) lastKey(meetingID string) string {
	return r.keyPrefix + "checkin:last:" + meetingID
}

// IncrCheckinCount 递增签到计数并记录最近签到时间。
// 两个写操作通过 Pipeline 一次往返提交。
func (r *RedisStateRepository) IncrCheckinCount(ctx context.Context, meetingID string, at time.Time) error {
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, r.countKey(meetingID))
	pipe.Set(ctx, r.lastKey(meetingID), strconv.FormatInt(at.UnixNano(), 10), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: incr checkin count for meeting '%s': %w", meetingID, err)
	}
	return nil
}

// GetCheckinStats 返回签到计数和最近签到时间。
// key 不存在视为 0 / 零值时间，不作为错误。
func (r *RedisStateRepository) GetCheckinStats(ctx context.Context, meetingID string) (int64, time.Time, error) {
	var last time.Time

	count, err := r.client.Get(ctx, r.countKey(meetingID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, last, nil
		}
		return 0, last, fmt.Errorf("redis: get checkin count for meeting '%s': %w", meetingID, err)
	}

	lastStr, err := r.client.Get(ctx, r.lastKey(meetingID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return count, last, nil
		}
		return 0, last, fmt.Errorf("redis: get last checkin for meeting '%s': %w", meetingID, err)
	}
	nanos, err := strconv.ParseInt(lastStr, 10, 64)
	if err != nil {
		return 0, last, fmt.Errorf("redis: parse last checkin timestamp '%s': %w", lastStr, err)
	}
	last = time.Unix(0, nanos)

	return count, last, nil
}

// SetCheckinCount 将签到计数覆盖为给定值 (周期性校准用)
func (r *RedisStateRepository) SetCheckinCount(ctx context.Context, meetingID string, count int64) error {
	err := r.client.Set(ctx, r.countKey(meetingID), strconv.FormatInt(count, 10), 0).Err()
	if err != nil {
		return fmt.Errorf("redis: set checkin count for meeting '%s': %w", meetingID, err)
	}
	return nil
}
