package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Store AI 回應快取
type Store interface {
	// Get 取得快取值，未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	// Set 寫入快取值
	Set(ctx context.Context, key, value string) error
	// Stats 快取統計
	Stats() map[string]interface{}
	// Close 釋放資源
	Close() error
}

// Key 以 SHA-256 計算快取鍵，parts 依序組合
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return namespace + ":" + hex.EncodeToString(hash[:])
}
