package api

import (
	"time"

	"ffridge/internal/api/handlers/chat"
	"ffridge/internal/api/handlers/health"
	"ffridge/internal/api/handlers/ingredient"
	"ffridge/internal/api/handlers/recipe"
	"ffridge/internal/api/middleware"
	chatService "ffridge/internal/core/chat"
	"ffridge/internal/core/inventory"
	recipeService "ffridge/internal/core/recipe"
	"ffridge/internal/infrastructure/config"
	"ffridge/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制預設值 (1MB)
	defaultMaxBodySize = 1 << 20
)

// Services 路由所需的服務
type Services struct {
	Inventory *inventory.Service
	Recipes   *recipeService.Service
	Chat      *chatService.Service
	// 以下可為 nil
	DB       health.Pinger
	Cache    health.CacheReporter
	Provider string
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBody))
	router.Use(middleware.Timeout(timeoutDuration))

	healthHandler := health.NewHandler(cfg.App.Version, svc.Provider, svc.DB, svc.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	ingredientHandler := ingredient.NewHandler(svc.Inventory)
	ingredientHandler.Register(v1.Group("/ingredients"))
	v1.GET("/stats", ingredientHandler.Stats)

	// AI 相關路由擋下重複送出
	dedup := middleware.Deduplication(cfg.DedupWindow)
	recipe.NewHandler(svc.Recipes, svc.Inventory).Register(v1.Group("/recipes"), dedup)
	chat.NewHandler(svc.Chat).Register(v1.Group("/chat"), dedup)

	common.LogInfo("Router setup completed successfully",
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBody),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)
	return router
}
