package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ffridge/internal/pkg/common"
)

// Item 需要檢查到期的項目
type Item struct {
	ID     string
	Name   string
	Expiry *int64
}

// ExpiryMillis 實作 Dated
func (i Item) ExpiryMillis() *int64 { return i.Expiry }

// Alert 到期提醒
type Alert struct {
	Item   Item
	Status Status
}

// Source 提供待檢查項目
type Source interface {
	ExpiryItems(ctx context.Context) ([]Item, error)
}

// Notifier 發送到期提醒
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// WatcherConfig 定期檢查設定
type WatcherConfig struct {
	Interval    time.Duration
	WarningDays int
	Location    *time.Location
	Clock       common.Clock
}

// Watcher 定期檢查即將到期與已逾期的食材
type Watcher struct {
	source   Source
	notifier Notifier
	cfg      WatcherConfig
}

// NewWatcher 創建新的到期檢查器
func NewWatcher(source Source, notifier Notifier, cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = common.SystemClock
	}
	return &Watcher{source: source, notifier: notifier, cfg: cfg}
}

// Run 啟動時先檢查一次，之後依間隔檢查，直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			common.LogInfo("到期檢查器停止")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
		common.LogError("到期檢查失敗", zap.Error(err))
	}
}

// Check 執行一次檢查，有提醒時交給 Notifier
func (w *Watcher) Check(ctx context.Context) ([]Alert, error) {
	items, err := w.source.ExpiryItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	now := common.NowMillis(w.cfg.Clock)
	var alerts []Alert
	for _, it := range items {
		st := ClassifyIn(it.Expiry, now, w.cfg.Location)
		if st.IsExpired() || st.ExpiresWithin(w.cfg.WarningDays) {
			alerts = append(alerts, Alert{Item: it, Status: st})
		}
	}

	common.LogDebug("到期檢查完成",
		zap.Int("items", len(items)),
		zap.Int("alerts", len(alerts)),
	)
	if len(alerts) == 0 {
		return nil, nil
	}
	if err := w.notifier.Notify(ctx, alerts); err != nil {
		return alerts, fmt.Errorf("failed to notify: %w", err)
	}
	return alerts, nil
}

// LogNotifier 將提醒寫入日誌
type LogNotifier struct{}

// Notify 實作 Notifier
func (LogNotifier) Notify(_ context.Context, alerts []Alert) error {
	expired := 0
	for _, a := range alerts {
		if a.Status.IsExpired() {
			expired++
		}
		common.LogWarn("食材到期提醒",
			zap.String("id", a.Item.ID),
			zap.String("name", a.Item.Name),
			zap.String("status", a.Status.Label()),
		)
	}
	common.LogInfo("到期提醒摘要",
		zap.Int("expiring", len(alerts)-expired),
		zap.Int("expired", expired),
	)
	return nil
}
