package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/auth"
	jwtpkg "webmail/backend/internal/auth/jwt"
	"webmail/backend/internal/config"
	"webmail/backend/internal/health"
	"webmail/backend/internal/middleware"
	"webmail/backend/internal/monitoring"
	"webmail/backend/internal/service"
	"webmail/backend/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config          *config.Config
	MailboxService  *service.MailboxService
	FolderService   *service.FolderService
	ContactService  *service.ContactService
	ProfileService  *service.ProfileService
	AttachmentStore *service.AttachmentStore
	AuthService     *auth.Service
	JWTManager      *jwtpkg.Manager
	WebSocketHub    *websocket.Hub
	Metrics         *monitoring.Metrics
	HealthChecker   *health.HealthChecker
	Logger          *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())

	// 附件以 base64 内联提交，请求体上限按编码开销放大
	bodyLimit := deps.Config.Mail.MaxAttachmentSize*4/3 + middleware.DefaultBodyLimit
	router.Use(middleware.BodySizeLimit(bodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 监控中间件
	if deps.Metrics != nil {
		mm := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
		router.Use(mm.HTTPMetrics())
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// 健康检查（/live 和 /ready）
	if deps.HealthChecker != nil {
		router.GET("/live", gin.WrapH(deps.HealthChecker.Handler()))
		router.GET("/ready", gin.WrapH(deps.HealthChecker.Handler()))
	}

	// 创建处理器
	mailHandler := NewMailHandler(deps.MailboxService, deps.AttachmentStore, deps.Logger)
	folderHandler := NewFolderHandler(deps.FolderService, deps.Logger)
	contactHandler := NewContactHandler(deps.ContactService, deps.Logger)
	profileHandler := NewProfileHandler(deps.ProfileService, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.ProfileService, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	authRateLimit := middleware.NewRateLimiter(
		deps.Config.RateLimit.RequestsPerSecond,
		deps.Config.RateLimit.Burst,
	)

	// V1 API
	v1 := router.Group("/v1")
	{
		// ========== Auth Routes ==========
		authRoutes := v1.Group("/auth")
		authRoutes.Use(authRateLimit.Handler())
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
		}

		// ========== Mail Routes ==========
		mailRoutes := v1.Group("/mail")
		mailRoutes.Use(jwtAuth.RequireAuth())
		{
			mailRoutes.POST("/send", mailHandler.Compose)
			mailRoutes.POST("/draft", mailHandler.SaveDraft)
			mailRoutes.GET("/starred/all", mailHandler.ListStarred)

			mailRoutes.GET("/:folder", mailHandler.ListFolder)
			mailRoutes.GET("/:folder/:id", mailHandler.GetMail)
			mailRoutes.DELETE("/:folder/:id", mailHandler.Delete)
			mailRoutes.POST("/:folder/:id/move", mailHandler.Move)
			mailRoutes.POST("/:folder/:id/star", mailHandler.ToggleStar)
		}

		// ========== Attachment Routes ==========
		v1.GET("/attachments/*path", jwtAuth.RequireAuth(), mailHandler.DownloadAttachment)

		// ========== Folder Routes ==========
		folderRoutes := v1.Group("/folders")
		folderRoutes.Use(jwtAuth.RequireAuth())
		{
			folderRoutes.GET("", folderHandler.List)
			folderRoutes.POST("", folderHandler.Create)
			folderRoutes.GET("/:folderId", folderHandler.Get)
			folderRoutes.PUT("/:folderId", folderHandler.Update)
			folderRoutes.DELETE("/:folderId", folderHandler.Delete)
			folderRoutes.GET("/:folderId/mail", folderHandler.ListMail)
		}

		// ========== Contact Routes ==========
		contactRoutes := v1.Group("/contacts")
		contactRoutes.Use(jwtAuth.RequireAuth())
		{
			contactRoutes.GET("", contactHandler.List)
			contactRoutes.POST("", contactHandler.Create)
			contactRoutes.GET("/:contactId", contactHandler.Get)
			contactRoutes.PUT("/:contactId", contactHandler.Update)
			contactRoutes.DELETE("/:contactId", contactHandler.Delete)
		}

		// ========== Profile Routes ==========
		profileRoutes := v1.Group("/profile")
		profileRoutes.Use(jwtAuth.RequireAuth())
		{
			profileRoutes.GET("", profileHandler.Get)
			profileRoutes.PATCH("", profileHandler.Update)
			profileRoutes.POST("/undo", profileHandler.Undo)
			profileRoutes.POST("/redo", profileHandler.Redo)
		}

		// ========== WebSocket Routes ==========
		if deps.WebSocketHub != nil {
			v1.GET("/ws", jwtAuth.RequireAuth(), deps.WebSocketHub.HandleConnection)
		}
	}

	return router
}
