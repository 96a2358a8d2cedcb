package common

import (
	"time"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Clock 回傳目前時間，可在測試替換
type Clock func() time.Time

// SystemClock 使用系統時間
func SystemClock() time.Time {
	return time.Now()
}

// NowMillis 以 epoch 毫秒表示時間
func NowMillis(c Clock) int64 {
	if c == nil {
		c = SystemClock
	}
	return c().UnixMilli()
}
