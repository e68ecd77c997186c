package main

import (
	"log"
	"time"

	"duo_dates/config"
	"duo_dates/handler"
	"duo_dates/middleware"
	"duo_dates/model"
	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	// 设置时区为 UTC（服务端统一使用 UTC）
	time.Local = time.UTC
}

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer utils.CloseDB()

	if err := utils.GetDB().AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.DateEntry{},
		&model.Photo{},
		&model.Comment{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化 Redis
	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer utils.CloseRedis()

	// 初始化认证中间件
	middleware.InitAuth(cfg.JWTSecret)

	// 创建 WebSocket Hub（通知在线推送）
	hub := handler.NewHub(utils.GetRedis())

	// 创建服务
	notifSvc := service.NewNotificationService(utils.GetDB())
	notifSvc.SetHubNotifier(hub)

	authSvc := service.NewAuthService(utils.GetDB())
	userSvc := service.NewUserService(utils.GetDB())
	partnerSvc := service.NewPartnerService(utils.GetDB(), notifSvc)
	dateSvc := service.NewDateService(utils.GetDB())
	photoSvc := service.NewPhotoService(utils.GetDB(), notifSvc)
	commentSvc := service.NewCommentService(utils.GetDB(), notifSvc)
	statsSvc := service.NewStatsService(utils.GetDB(), utils.GetRedis(), time.Duration(cfg.StatsCacheTTL)*time.Second)

	// 创建处理器
	authHandler := handler.NewAuthHandler(authSvc, time.Duration(cfg.TokenTTLHours)*time.Hour)
	userHandler := handler.NewUserHandler(userSvc)
	partnerHandler := handler.NewPartnerHandler(partnerSvc, statsSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc, statsSvc)
	settingsHandler := handler.NewSettingsHandler(notifSvc)
	dateHandler := handler.NewDateHandler(dateSvc, statsSvc)
	photoHandler := handler.NewPhotoHandler(photoSvc, statsSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	// 创建 Gin 路由
	r := gin.Default()

	// 注册统一错误处理中间件
	r.Use(middleware.ErrorHandlerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	// WebSocket 连接（使用 token 认证，不需要 HTTP 中间件）
	r.GET("/ws", handler.HandleWebSocket(hub))

	// 公开接口（注册 / 登录）
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/change-password", authHandler.ChangePassword)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/check-availability", authHandler.CheckAvailability)
	}

	// HTTP API 路由组（需要认证）
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// 用户搜索与资料
		api.GET("/users/search", userHandler.SearchUsers)
		api.GET("/profile", userHandler.GetProfile)
		api.GET("/stats", statsHandler.GetStats)

		// 约会记录
		api.GET("/dates", dateHandler.GetDates)
		api.POST("/dates", dateHandler.CreateDate)

		// 照片
		api.GET("/photos", photoHandler.GetPhotos)
		api.POST("/photos", photoHandler.AddPhoto)

		// 评论
		api.GET("/comments", commentHandler.GetComments)
		api.POST("/comments", commentHandler.AddComment)

		// 通知
		api.GET("/notifications", notifHandler.GetNotifications)
		api.POST("/notifications", notifHandler.CreateNotification)
		api.PATCH("/notifications", notifHandler.MarkAsRead)
		api.DELETE("/notifications", notifHandler.DeleteNotification)

		// 通知设置
		api.GET("/settings/notifications", settingsHandler.GetNotificationSettings)
		api.PATCH("/settings/notifications", settingsHandler.UpdateNotificationSettings)

		// 伴侣配对
		api.POST("/partner/send-request", partnerHandler.SendRequest)
		api.POST("/partner/accept", partnerHandler.AcceptRequest)
		api.POST("/partner/remove", partnerHandler.RemovePartner)
		api.GET("/partner/requests", partnerHandler.ListRequests)

		// 登出（清除在线状态）
		api.POST("/logout", func(c *gin.Context) {
			if userID, exists := middleware.GetUserID(c); exists {
				hub.ForceOffline(userID.String())
			}
			utils.SuccessWithMessage(c, "Logged out", nil)
		})
	}

	// 启动服务
	log.Printf("🚀 duo_dates service starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
