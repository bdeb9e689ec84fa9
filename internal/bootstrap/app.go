package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/Gursimran75-way/Group-Chat-Backend/internal/handler/http"
	gormpersistence "github.com/Gursimran75-way/Group-Chat-Backend/internal/infra/persistence/gorm"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/infra/setup"
	redisstate "github.com/Gursimran75-way/Group-Chat-Backend/internal/infra/state/redis"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/metrics"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/middleware"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/tasks"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Worker      *worker.WorkerServer
	HttpServer  *http.Server
}

// Handlers 聚合路由需要的 HTTP Handler
type Handlers struct {
	Auth    *httpHandler.AuthHandler
	User    *httpHandler.UserHandler
	Group   *httpHandler.GroupHandler
	Message *httpHandler.MessageHandler
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s, Env: %s)", log.GetLevel(), cfg.AppEnv)

	// 3. 初始化基础设施
	db, err := setup.InitDB(cfg.DBOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	groupRepo := gormpersistence.NewGormGroupRepository(db)
	messageRepo := gormpersistence.NewGormMessageRepository(db)
	sessionRepo := redisstate.NewRedisSessionRepository(redisClient, cfg.KeyPrefix)

	// 5. 初始化 Services
	cascade := service.NewCascadeCoordinator(userRepo, messageRepo, tasks.NewEnqueuer(asynqClient))
	groupService := service.NewGroupService(groupRepo, userRepo, cascade, cfg.FrontendBaseURL)
	messageService := service.NewMessageService(messageRepo, groupRepo)
	userService := service.NewUserService(userRepo, groupRepo, sessionRepo)
	authService, err := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret, cfg.JWTExpiryHours, cfg.RefreshExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	log.Info("Services initialized")

	// 6. 初始化 Worker Server (重试失败的级联清理)
	workerServer := worker.NewWorkerServer(redisClientOpt, cascade, cfg.WorkerConcurrency, log)

	// 7. 初始化 Gin Engine 和路由
	handlers := Handlers{
		Auth:    httpHandler.NewAuthHandler(authService),
		User:    httpHandler.NewUserHandler(userService),
		Group:   httpHandler.NewGroupHandler(groupService, authService),
		Message: httpHandler.NewMessageHandler(messageService),
	}
	router := NewRouter(cfg, log, sessionRepo, authService, handlers)

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("Application assembled successfully")
	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		Worker:      workerServer,
		HttpServer:  httpServer,
	}, nil
}

// NewRouter 创建 Gin Engine 并注册所有路由
func NewRouter(cfg *Config, log *logrus.Logger, limiter middleware.RateLimiter, tokens middleware.TokenParser, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(LoggerMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := middleware.Auth(tokens)
	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter, cfg.RateLimitMax, cfg.RateLimitWindow))

	users := api.Group("/users")
	{
		users.POST("", h.Auth.Register)
		users.POST("/login", h.Auth.Login)
		users.POST("/refresh-token", h.Auth.Refresh)
		users.POST("/logout", auth, h.Auth.Logout)
		users.GET("/me", auth, h.Auth.Me)
		users.GET("", auth, h.User.ListUsers)
		users.GET("/:id", auth, h.User.GetUser)
		users.PUT("/:id", auth, h.User.ReplaceUser)
		users.PATCH("/:id", auth, h.User.EditUser)
		users.DELETE("/:id", auth, h.User.DeleteUser)
	}

	groups := api.Group("/groups")
	{
		// 接受邀请时用邮箱和密码核验身份，不需要 JWT
		groups.POST("/accept-invitation/:token", h.Group.AcceptInvitation)

		protected := groups.Group("", auth)
		protected.GET("/public", h.Group.GetPublicGroups)
		protected.POST("", h.Group.CreateGroup)
		protected.POST("/:groupId/join", h.Group.JoinGroup)
		protected.POST("/:groupId/invite/:userId", h.Group.CreateInvitation)
		protected.GET("/analytics", h.Group.Analytics)
		protected.GET("/group-analytics/:groupId", h.Group.GroupAnalytics)
		protected.PUT("/edit-group/:groupId", h.Group.EditGroup)
		protected.DELETE("/delete/:groupId", h.Group.DeleteGroup)
	}

	messages := api.Group("/messages", auth)
	{
		messages.POST("/send", h.Message.SendMessage)
		messages.POST("/get-all", h.Message.GetAllMessages)
	}

	return router
}

// Start 启动 Worker 和 HTTP 服务器，不阻塞调用者
func (a *App) Start() {
	if err := a.Worker.Start(); err != nil {
		a.Log.Errorf("Failed to start worker server, cascade retries are disabled: %v", err)
	} else {
		a.Log.Info("Asynq worker server started")
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 先停止接收新请求
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 等待正在执行的级联任务
	if a.Worker != nil {
		a.Worker.Shutdown()
	}

	// 3. 关闭 Asynq Client 和 Redis
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	// 4. 关闭数据库连接池
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Errorf("Error closing database connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}
