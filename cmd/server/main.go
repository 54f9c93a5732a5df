package main

import (
	"errors"
	"fmt"
	"net/http"
	"linkfolio-platform/internal/analytics"
	"linkfolio-platform/internal/clicks"
	"linkfolio-platform/internal/config"
	"linkfolio-platform/internal/gateway"
	"linkfolio-platform/internal/handler"
	"linkfolio-platform/internal/ledger"
	"linkfolio-platform/internal/middleware"
	"linkfolio-platform/internal/model"
	"linkfolio-platform/internal/notify"
	"linkfolio-platform/internal/shortcode"
	"linkfolio-platform/pkg/database"
	auth "linkfolio-platform/pkg/jwt"
	"linkfolio-platform/pkg/logger"
	"linkfolio-platform/pkg/redis"
	"time"

	_ "linkfolio-platform/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title LinkFolio Platform API
// @version 1.0
// @description 短链接货币化平台：重定向网关、点击分析与收益提现
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	logger.InitLogger()
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		sugaredLogger.Fatalf("配置加载失败: %v", err)
	}

	db, err := database.InitMySQL(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewClient(&redis.Config{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	// 初始化并启动短码生成器
	shortcodeGenerator := shortcode.NewGenerator(db, sugaredLogger)
	shortcodeGenerator.Start()
	defer shortcodeGenerator.Stop()
	sugaredLogger.Info("✅ 短码生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	if err := createAdminUser(db); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	// 核心服务装配
	clickRecorder := clicks.NewRecorder(db, sugaredLogger)
	redirectGateway := gateway.NewGateway(db, rdb, clickRecorder, sugaredLogger)
	analyticsService := analytics.NewService(db)
	notifyService := notify.NewService(db, sugaredLogger)
	ledgerService := ledger.NewService(db, cfg.Payout.MinimumAmount, cfg.Payout.Currency, notifyService, sugaredLogger)

	// 启动时清理一次滚动留存窗口之外的点击事件
	if _, err := clickRecorder.PurgeOlderThan(cfg.Clicks.RetentionDays); err != nil {
		sugaredLogger.Warnf("点击事件清理失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMiddleware := middleware.AuthMiddleware(tokenManager)
	rateLimitMiddleware := middleware.RateLimit(rdb, &cfg.RateLimit)
	router.Use(rateLimitMiddleware)

	linkHandler := handler.NewLinkHandler(db, redirectGateway, shortcodeGenerator, cfg.App.FrontendURL)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	payoutHandler := handler.NewPayoutHandler(ledgerService)
	authHandler := handler.NewAuthHandler(db, rdb, tokenManager)

	registerRoutes(router, linkHandler, analyticsHandler, payoutHandler, authHandler, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
	sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugaredLogger.Fatalf("服务启动失败: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	linkHandler *handler.LinkHandler,
	analyticsHandler *handler.AnalyticsHandler,
	payoutHandler *handler.PayoutHandler,
	authHandler *handler.AuthHandler,
	authMiddleware gin.HandlerFunc,
) {
	router.GET("/health", handler.HealthCheck)
	// 面向访客的短码跳转入口
	router.GET("/l/:code", linkHandler.RedirectToOriginal)

	api := router.Group("/api/v1")
	api.Use(authMiddleware)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authHandler.Register)
		api.GET("/me", authHandler.GetCurrentUser)

		// 公开访问路径，认证中间件按路径放行
		api.GET("/links/public/:code", linkHandler.AccessPublicLink)

		api.POST("/links", linkHandler.CreateLink)
		api.GET("/links", linkHandler.GetLinks)
		api.GET("/links/recent", linkHandler.GetRecentLinks)
		api.GET("/links/:id", linkHandler.GetLink)
		api.PUT("/links/:id", linkHandler.UpdateLink)
		api.PATCH("/links/:id/toggle", linkHandler.ToggleLink)
		api.DELETE("/links/:id", linkHandler.DeleteLink)

		api.GET("/analytics/insights", analyticsHandler.GetInsights)
		api.GET("/analytics/top-links", analyticsHandler.GetTopLinks)
		api.GET("/analytics/chart", analyticsHandler.GetChartData)
		api.GET("/analytics/devices", analyticsHandler.GetDeviceAnalytics)
		api.GET("/analytics/links/:id", analyticsHandler.GetLinkAnalytics)

		api.GET("/payouts", payoutHandler.GetPayouts)
		api.GET("/payouts/stats", payoutHandler.GetPayoutStats)
		api.GET("/payouts/transactions", payoutHandler.GetTransactions)
		api.GET("/payouts/:id", payoutHandler.GetPayout)
		api.POST("/payouts", payoutHandler.RequestPayout)
		api.PUT("/payouts/:id/cancel", payoutHandler.CancelPayout)
	}
}

func createAdminUser(db *gorm.DB) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	admin := model.User{Username: "admin", Email: "admin@linkfolio.com", Role: "admin", IsActive: true}
	if err := admin.SetPassword("admin"); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", "admin")
	return nil
}
