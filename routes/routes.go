package routes

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"go-plantcare/config"
	"go-plantcare/controllers"
	"go-plantcare/middleware"
	"go-plantcare/utils"
)

// SetupRouter 配置所有路由
func SetupRouter(db *sql.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// 创建控制器实例
	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authController := controllers.NewAuthController(db, cfg.Auth.JWTSecret, tokenTTL)
	plantController := controllers.NewPlantController(db)
	notificationController := controllers.NewNotificationController(db)

	r.GET("/health", func(c *gin.Context) {
		utils.Success(c, "ok", nil)
	})

	// 公共路由，带限流
	public := r.Group("/")
	public.Use(middleware.RateLimit(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst))
	{
		// 用户认证相关路由
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
	}

	// 需要认证的路由
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	{
		protected.POST("/auth/refresh", authController.Refresh)

		// 植物相关路由
		protected.POST("/plants", plantController.CreatePlant)
		protected.GET("/plants", plantController.ListPlants)
		protected.GET("/plants/:id", plantController.GetPlant)
		protected.PATCH("/plants/:id", plantController.UpdatePlant)
		protected.DELETE("/plants/:id", plantController.DeletePlant)

		// 浇水相关路由
		protected.POST("/plants/:id/water", plantController.WaterPlant)
		protected.GET("/plants/:id/history", plantController.GetWateringHistory)
		protected.GET("/plants/:id/stats", plantController.GetPlantStats)

		// 提醒相关路由
		protected.GET("/notifications", notificationController.GetNotifications)
		protected.POST("/plants/:id/snooze", notificationController.Snooze)
		protected.POST("/plants/:id/reminders/enable", notificationController.EnableReminders)
		protected.POST("/plants/:id/reminders/disable", notificationController.DisableReminders)
	}

	return r
}
