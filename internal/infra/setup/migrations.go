package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
)

// mysqlTableOptions 保证 MySQL 表使用 utf8mb4，索引列长度限制为 191
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci"

// MigrateDB 自动迁移所有模型对应的表结构。
// 返回错误以便调用者知道迁移是否成功。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	migrator := db
	if db.Dialector.Name() == DriverMySQL {
		migrator = db.Set("gorm:table_options", mysqlTableOptions)
	}

	err := migrator.AutoMigrate(
		&domain.User{},
		&domain.UserGroup{},
		&domain.Group{},
		&domain.Invitation{},
		&domain.Message{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Debug("Database migration completed successfully")
	return nil
}
