package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/moovierec/internal/config"
	"github.com/user/moovierec/internal/handler"
	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/middleware"
	"github.com/user/moovierec/internal/recommender"
	"github.com/user/moovierec/internal/repository"
	"github.com/user/moovierec/internal/router"
	"github.com/user/moovierec/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Sync()

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("数据库连接失败", "error", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		appLog.Fatal("数据库迁移失败", "error", err)
	}

	// 初始化仓库
	repos := repository.NewRepositories(db, cfg.CatalogCacheTTL)

	// 推荐引擎，配置不合法时直接退出
	engine, err := recommender.NewEngine(cfg.Recommender, repos.Movie, repos.Rating, repos.Recommendation, appLog)
	if err != nil {
		appLog.Fatal("推荐引擎初始化失败", "error", err)
	}
	reasons := service.NewReasonService(engine, repos.Movie, repos.Rating)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(appLog))
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	// 初始化 Handler
	h := handler.NewHandler(engine, reasons, repos.Movie, repos.Rating, cfg, appLog)

	// 启动定时刷新任务
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	refreshSvc := service.NewRefreshService(engine, repos.Rating, repos.JobCursor, repos.Recommendation, service.RefreshOptions{
		Interval:  cfg.RefreshInterval,
		BatchSize: cfg.RefreshBatchSize,
		Retention: cfg.RecommendationTTL,
	}, appLog)
	refreshSvc.Start(ctx)

	// 注册路由
	router.RegisterRoutes(r, h)

	// 生成推荐可能较慢，写超时需覆盖生成超时
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.GenerateTimeout + 10*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		appLog.Info("服务器启动", "site", cfg.SiteName, "env", cfg.Env, "addr", "http://localhost:"+cfg.Port, "config_version", cfg.Recommender.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("正在关闭服务器...")

	// 先停止定时任务，等待当前批次结束
	stop()
	refreshSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("服务器强制关闭", "error", err)
	}

	appLog.Info("服务器已退出")
}
