package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"midnight_match/internal/api"
	"midnight_match/internal/config"
	"midnight_match/internal/models"
	"midnight_match/internal/repository"
	"midnight_match/internal/service"
	"midnight_match/internal/storage"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和每晚的配對時程等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(&models.User{}, &models.Session{}, &models.SessionMessage{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化共享暫存庫
	// 未設定 Redis 位址時退回行程內實作（僅限單一實例部署）
	var store storage.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := storage.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Printf("redis addr not configured, using in-process store")
		store = storage.NewMemoryStore()
	}

	// 初始化 repositories 和 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, store, cfg)

	// 啟動每晚的階段排程器
	if err := services.Scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer services.Scheduler.Stop()

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
