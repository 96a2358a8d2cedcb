// Package persistence SQLite 儲存（gorm）
package persistence

import (
	"fmt"
	"strings"

	"ffridge/internal/infrastructure/config"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath 記憶體資料庫
const MemoryPath = ":memory:"

// Open 開啟資料庫並執行 AutoMigrate
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = MemoryPath
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// 每條連線各自一份記憶體資料庫，也避免 SQLite 寫入鎖競爭
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&IngredientModel{}, &RecipeModel{}, &ChatMessageModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	common.LogInfo("資料庫已連線", zap.String("path", path))
	return db, nil
}

// Close 關閉資料庫
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return logger.Info
	case "warn", "warning":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
