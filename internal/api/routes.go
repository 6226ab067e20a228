package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"midnight_match/internal/api/handlers"
	"midnight_match/internal/middleware"
	"midnight_match/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.UserService)
	matchHandler := handlers.NewMatchHandler(services.PhaseService, services.SessionRepo)
	wsHandler := handlers.NewWebSocketHandler(services.RoomGateway)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 配對相關
		match := authorized.Group("/match")
		{
			match.GET("/phase", matchHandler.GetPhase)  // 查詢目前階段
			match.GET("/ws", wsHandler.HandleWebSocket) // WebSocket 連接點
		}

		// 會話記錄查詢（僅限參與者）
		authorized.GET("/sessions/:id", matchHandler.GetSession)
	}
}
