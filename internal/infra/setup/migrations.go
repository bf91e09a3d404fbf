package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"attendance-now/internal/domain"
)

// MigrateDB 在启动时幂等地创建数据库模式。
// 没有独立的迁移系统：AutoMigrate 负责建表、加列和建索引，
// 包括 attendees 表上 (meeting_id, ip_hash) 的唯一索引。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.Meeting{},
		&domain.Attendee{},
		&domain.AuditLog{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
