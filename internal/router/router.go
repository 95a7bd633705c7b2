package router

import (
	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/guard"
	adminhandlers "github.com/veluxe-market/internal/http/handlers/admin"
	publichandlers "github.com/veluxe-market/internal/http/handlers/public"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(SessionAuthMiddleware(c.AuthService))

	rateLimit := c.RateLimitService

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 钱包认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/challenge", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryAuth, KeyByIP), publicHandler.Challenge)
			auth.POST("/verify", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryAuth, KeyByIP), publicHandler.Verify)
		}

		// 推荐链接接口（匿名可访问）
		apiV1.POST("/referral/click", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryRead, KeyByIP), publicHandler.TrackReferralClick)
		apiV1.GET("/r/:code", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryRead, KeyByIP), publicHandler.TrackReferralLink)
		apiV1.POST("/sellers/register", RateLimitMiddleware(rateLimit, constants.RateLimitCategorySensitive, KeyByIP), publicHandler.RegisterSeller)

		// 层级表（公开只读）
		apiV1.GET("/tiers", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryRead, KeyByAuthOrIP), publicHandler.ListTiers)

		// 经纪人开通（需登录）
		apiV1.POST("/brokers/register",
			Guard(guard.RequireAuthenticated),
			RateLimitMiddleware(rateLimit, constants.RateLimitCategorySensitive, KeyByAuthOrIP),
			publicHandler.RegisterBroker)

		// 经纪人自助接口（需经纪人角色）
		broker := apiV1.Group("/brokers/me")
		broker.Use(Guard(guard.RequireBroker))
		broker.Use(RateLimitMiddleware(rateLimit, constants.RateLimitCategoryRead, KeyByAuthOrIP))
		{
			broker.GET("/dashboard", publicHandler.GetBrokerDashboard)
			broker.GET("/commissions", publicHandler.ListMyCommissions)
			broker.GET("/sellers", publicHandler.ListMySellers)
			broker.GET("/notifications", publicHandler.ListMyNotifications)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(rateLimit, constants.RateLimitCategoryAuth, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(AdminJWTMiddleware(c.AuthService), Guard(guard.RequireAdmin))
			{
				authorized.POST("/sales", adminHandler.RecordSale)
				authorized.GET("/commissions", adminHandler.ListCommissions)
				authorized.PUT("/commissions/:id/status", adminHandler.UpdateCommissionStatus)
				authorized.GET("/brokers", adminHandler.ListBrokers)
				authorized.GET("/brokers/:id/overview", adminHandler.GetBrokerOverview)
				authorized.PUT("/brokers/:id/status", adminHandler.UpdateBrokerStatus)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
