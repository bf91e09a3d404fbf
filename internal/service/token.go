package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"attendance-now/internal/domain"
	"attendance-now/internal/repository"
)

// 会议 ID 的字符集和长度。ID 是公开的 (出现在加入链接和二维码中)，
// 但必须不可预测，因此从 crypto/rand 取样。
const (
	meetingIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	meetingIDLength  = 10
	maxIDAttempts    = 10

	adminSecretBytes = 32
	attendeeIDBytes  = 16
)

// generateAdminSecret 生成管理密钥的明文。
// 密钥只在创建响应中出现一次，之后仅保存 bcrypt 哈希。
func generateAdminSecret() (string, error) {
	b := make([]byte, adminSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashAdminSecret 使用 bcrypt 对管理密钥进行哈希处理
func hashAdminSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from secret: %w", err)
	}
	return string(bytes), nil
}

// checkAdminSecret 验证提供的密钥是否与存储的哈希匹配
func checkAdminSecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

// generateAttendeeID 生成签到记录的不透明标识符
func generateAttendeeID() (string, error) {
	b := make([]byte, attendeeIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// authorizeMeeting 查找会议并验证管理密钥。
// 会议不存在返回 ErrMeetingNotFound，密钥不匹配返回 ErrForbidden。
// 密钥验证对所有受保护操作一致，与会议状态无关。
func authorizeMeeting(ctx context.Context, repo repository.MeetingRepository, id, secret string) (*domain.Meeting, error) {
	meeting, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, ErrInternalServer
	}
	if meeting == nil { // 防御性检查
		return nil, ErrMeetingNotFound
	}
	if !checkAdminSecret(secret, meeting.AdminSecretHash) {
		return nil, ErrForbidden
	}
	return meeting, nil
}
