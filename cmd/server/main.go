package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"webmail/backend/internal/auth"
	jwtpkg "webmail/backend/internal/auth/jwt"
	"webmail/backend/internal/config"
	"webmail/backend/internal/health"
	"webmail/backend/internal/logger"
	"webmail/backend/internal/mailsort"
	"webmail/backend/internal/monitoring"
	"webmail/backend/internal/pool"
	"webmail/backend/internal/service"
	"webmail/backend/internal/storage/jsonfile"
	httptransport "webmail/backend/internal/transport/http"
	"webmail/backend/internal/websocket"
)

// main 启动邮箱后端服务：HTTP API、WebSocket 推送和回收站清理任务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.LogFile,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting webmail server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("base_path", cfg.Storage.BasePath),
	)

	// 初始化存储层
	store, err := jsonfile.NewStore(cfg.Storage.BasePath, log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize storage: %v", err))
	}

	// 初始化邮件 ID 序列
	sequence, err := jsonfile.NewSequence(filepath.Join(cfg.Storage.BasePath, "mail_counter"), log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize mail sequence: %v", err))
	}

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, log)

	// 初始化附件存储
	attachments, err := service.NewAttachmentStore(cfg.Storage.BasePath, cfg.Mail.MaxAttachmentSize, metrics, log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize attachment storage: %v", err))
	}

	// 初始化服务层
	sorts := mailsort.NewRegistry(log)
	factory := service.NewMailFactory(sequence)
	mailboxService := service.NewMailboxService(store, factory, sorts, log)
	folderService := service.NewFolderService(store, sorts, log)
	contactService := service.NewContactService(store, log)
	profileService := service.NewProfileService(store, log)

	// 初始化认证
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authService := auth.NewService(store, jwtManager, log)

	// 初始化 WebSocket 推送，并接到邮件服务（避免循环依赖）
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, metrics, log)
	mailboxService.SetNotifier(wsHub)

	// 初始化回收站清理
	cleanupPool := pool.NewWorkerPool(cfg.Mail.CleanupWorkers, cfg.Mail.CleanupWorkers*4, log)
	cleanupService := service.NewTrashCleanupService(
		store, cleanupPool, metrics, log,
		cfg.Mail.TrashRetention, cfg.Mail.CleanupInterval,
	)

	// 创建路由
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:          cfg,
		MailboxService:  mailboxService,
		FolderService:   folderService,
		ContactService:  contactService,
		ProfileService:  profileService,
		AttachmentStore: attachments,
		AuthService:     authService,
		JWTManager:      jwtManager,
		WebSocketHub:    wsHub,
		Metrics:         metrics,
		HealthChecker:   healthChecker,
		Logger:          log,
	})

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// WebSocket Hub goroutine
	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	// 回收站清理 goroutine
	group.Go(func() error {
		log.Info("starting trash cleanup task",
			zap.Duration("interval", cfg.Mail.CleanupInterval),
			zap.Duration("retention", cfg.Mail.TrashRetention),
		)
		cleanupPool.Start(groupCtx)
		cleanupService.Run(groupCtx)
		cleanupPool.Stop()
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("servers stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
