// Package app 組裝資料庫、AI 與各服務
package app

import (
	"context"
	"errors"
	"fmt"

	"ffridge/internal/core/ai/cache"
	"ffridge/internal/core/ai/provider"
	"ffridge/internal/core/ai/service"
	"ffridge/internal/core/chat"
	"ffridge/internal/core/expiry"
	"ffridge/internal/core/inventory"
	"ffridge/internal/core/recipe"
	"ffridge/internal/infrastructure/config"
	"ffridge/internal/infrastructure/persistence"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 應用程式元件
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	AI        *service.Service
	Provider  provider.Provider
	Inventory *inventory.Service
	Recipes   *recipe.Service
	Chat      *chat.Service

	cache cache.Store
}

// New 依設定建立所有元件，呼叫端負責 Close
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Expiry.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid expiry timezone: %w", err)
	}

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := cache.New(ctx, cfg)
	if err != nil {
		_ = persistence.Close(db)
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	p, err := provider.New(cfg)
	if err != nil {
		_ = persistence.Close(db)
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	ai := service.NewService(p, store, service.WithTemperature(cfg.AI.Temperature))
	recipes := recipe.NewService(ai, persistence.NewRecipeRepository(db))
	inv := inventory.NewService(persistence.NewIngredientRepository(db), recipes, inventory.Options{
		WarningDays: cfg.Expiry.WarningDays,
		Location:    loc,
	})
	chats := chat.NewService(ai, persistence.NewChatRepository(db), chat.Options{})

	common.LogInfo("服務初始化完成",
		zap.String("provider", p.Name()),
		zap.String("model", p.GetModel()),
		zap.Bool("cache_enabled", store != nil),
		zap.String("database", cfg.Database.Path),
	)

	return &App{
		Config:    cfg,
		DB:        db,
		AI:        ai,
		Provider:  p,
		Inventory: inv,
		Recipes:   recipes,
		Chat:      chats,
		cache:     store,
	}, nil
}

// Watcher 建立到期檢查器
func (a *App) Watcher(notifier expiry.Notifier) *expiry.Watcher {
	loc, _ := a.Config.Expiry.Location()
	if notifier == nil {
		notifier = expiry.LogNotifier{}
	}
	return expiry.NewWatcher(a.Inventory, notifier, expiry.WatcherConfig{
		Interval:    a.Config.Expiry.CheckInterval,
		WarningDays: a.Config.Expiry.WarningDays,
		Location:    loc,
	})
}

// Close 釋放資源
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.Provider != nil {
		errs = append(errs, a.Provider.Close())
	}
	if a.DB != nil {
		errs = append(errs, persistence.Close(a.DB))
	}
	return errors.Join(errs...)
}
