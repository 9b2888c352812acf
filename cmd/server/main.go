package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/database"
	"github.com/PohSayKeong/fundl/internal/handler"
	"github.com/PohSayKeong/fundl/internal/identity"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/logic"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/PohSayKeong/fundl/internal/router"
	"github.com/PohSayKeong/fundl/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	chainManager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain manager: %v", err)
	}
	defer chainManager.Close()

	verifier, err := identity.NewVerifier(cfg.Identity)
	if err != nil {
		logger.Fatal("Failed to initialize identity verifier: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	reader := chainManager.Reader()
	repo := repository.NewProjectRepository(db)
	projectHandler := handler.NewProjectHandler(
		logic.NewProjectLogic(reader, repo, cfg.Chain.ListConcurrency),
		logic.NewMetadataGate(reader, repo, verifier),
		cfg.Identity.Header,
	)

	// 初始化路由
	r := router.Setup(projectHandler, handler.NewHealthHandler(chainManager), cfg.Identity.Header)

	// 启动定时任务
	tasks, err := scheduler.NewManager(cfg.Task)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	if err := tasks.RegisterJobs(reader, repo); err != nil {
		logger.Fatal("Failed to register jobs: %v", err)
	}
	tasks.Start()
	defer tasks.Stop()

	// 启动服务器
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
}
