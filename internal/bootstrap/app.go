package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "attendance-now/internal/handler/http"
	gormpersistence "attendance-now/internal/infra/persistence/gorm"
	"attendance-now/internal/infra/queue"
	"attendance-now/internal/infra/setup"
	redisstate "attendance-now/internal/infra/state/redis"
	"attendance-now/internal/middleware"
	"attendance-now/internal/service"
	"attendance-now/internal/tasks"
	"attendance-now/internal/worker"
)

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	DBPath            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ServerPort        string
	LogLevel          string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	AppEnv            string // 应用环境 (development/production)
	KeyPrefix         string // Redis Key 前缀
	ClientDist        string // 前端静态文件目录 (可选)
	StrictTransitions bool   // 状态转换策略：严格单向 or 任意覆盖
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量

	cfg := &Config{
		DBPath:        os.Getenv("DB_PATH"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		KeyPrefix:     os.Getenv("REDIS_KEY_PREFIX"),
		ClientDist:    os.Getenv("CLIENT_DIST"),
		// --- 设置默认值 ---
		RateLimitMax:      100,
		RateLimitWindow:   1 * time.Second,
		StrictTransitions: true,
	}

	// 处理 Redis DB
	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB")) // 忽略错误，默认为 0

	// 处理状态转换策略
	if v := os.Getenv("STRICT_STATUS_TRANSITIONS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Warnf("Invalid STRICT_STATUS_TRANSITIONS '%s', using default 'true'", v)
		} else {
			cfg.StrictTransitions = strict
		}
	}

	// --- 设置其他默认值和进行必要检查 ---
	if cfg.DBPath == "" {
		cfg.DBPath = "attendance.db"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "att:"
	}
	if cfg.ClientDist == "" {
		cfg.ClientDist = "client/dist"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App 结构体包含应用的所有组件和配置
type App struct {
	Config         *Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	AsynqClient    *asynq.Client
	AsynqServer    *worker.WorkerServer
	HttpServer     *http.Server
	redisClientOpt asynq.RedisClientOpt
	scheduler      *asynq.Scheduler
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
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // cfg.LogLevel 已被 LoadConfig 验证
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Infrastructure initialized successfully")

	// 4. 初始化 Repositories
	log.Info("Initializing repositories...")
	meetingRepo := gormpersistence.NewGormMeetingRepository(db)
	attendeeRepo := gormpersistence.NewGormAttendeeRepository(db)
	auditRepo := gormpersistence.NewGormAuditRepository(db)
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)
	log.Info("Repositories initialized")

	// 5. 初始化 Services
	log.Info("Initializing services...")
	auditQueue := queue.NewAsynqAuditQueue(asynqClient)
	meetingService := service.NewMeetingService(meetingRepo, attendeeRepo, stateRepo, auditQueue, cfg.StrictTransitions)
	admissionService := service.NewAdmissionService(meetingRepo, attendeeRepo, stateRepo, auditQueue)
	exportService := service.NewExportService(meetingRepo, attendeeRepo)
	log.Info("Services initialized")

	// 6. 初始化 Handlers
	meetingHandler := httpHandler.NewMeetingHandler(meetingService)
	attendHandler := httpHandler.NewAttendHandler(admissionService)
	exportHandler := httpHandler.NewExportHandler(exportService)
	configHandler := httpHandler.NewConfigHandler(cfg.ServerPort)
	log.Info("Handlers initialized")

	// 7. 初始化 Worker Server
	workerServer := worker.NewWorkerServer(redisClientOpt, auditRepo, meetingRepo, attendeeRepo, stateRepo, log)
	log.Info("Worker server initialized")

	// 8. 初始化 Gin Engine 和路由
	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))

	// --- 应用其他中间件 ---
	router.Use(func(c *gin.Context) { /* CORS */
		allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
		if allowedOrigin == "" {
			allowedOrigin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))

	// --- 设置路由 ---
	api := router.Group("/api")
	{
		api.POST("/meetings", meetingHandler.CreateMeeting)
		api.GET("/meetings/:id", meetingHandler.GetMeeting)
		api.GET("/meetings/:id/attendees", meetingHandler.ListAttendees)
		api.POST("/meetings/:id/status", meetingHandler.SetStatus)
		api.GET("/meetings/:id/stats", meetingHandler.GetStats)
		api.GET("/meetings/:id/export/:type", exportHandler.Export)
		api.POST("/attend", attendHandler.Attend)
		api.GET("/config", configHandler.GetConfig)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	// --- 前端静态文件 (如果构建产物存在) ---
	registerClientRoutes(router, cfg.ClientDist, log)
	log.Info("Router setup complete")

	// 9. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 10. 组装 App 对象
	app := &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}
	log.Info("Application assembled successfully")

	return app, nil
}

// registerClientRoutes 挂载前端单页应用：已知文件直接回写，
// 其余非 API 路径回退到 index.html (前端路由接管)。
func registerClientRoutes(router *gin.Engine, distDir string, log *logrus.Logger) {
	info, err := os.Stat(distDir)
	if err != nil || !info.IsDir() {
		log.Infof("Client bundle directory '%s' not found, serving API only", distDir)
		return
	}
	indexPath := filepath.Join(distDir, "index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		requested := filepath.Join(distDir, filepath.Clean("/"+c.Request.URL.Path))
		if st, err := os.Stat(requested); err == nil && !st.IsDir() {
			c.File(requested)
			return
		}
		c.File(indexPath)
	})
	log.Infof("Serving client bundle from '%s'", distDir)
}

// Start 启动应用的所有后台 Goroutine 和 HTTP 服务器
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")

	go a.AsynqServer.Start()
	a.Log.Info("Asynq worker server routine started")

	a.registerPeriodicTasks()

	// 启动 HTTP 服务器
	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})
	a.scheduler = scheduler

	// 周期性地用数据库计数校准 Redis 中的实时签到计数
	task := tasks.NewCounterReconcileTask()
	schedule := "@every 5m"
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("default"))
	if err != nil {
		a.Log.Errorf("Could not register periodic counter reconcile task: %v", err)
	} else {
		a.Log.Infof("Periodic counter reconcile task registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := scheduler.Run(); err != nil {
			if !errors.Is(err, asynq.ErrServerClosed) {
				a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
			} else {
				a.Log.Info("Asynq scheduler stopped.")
			}
		}
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 停止 Scheduler
	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}

	// 2. 优雅关闭 Worker Server
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	// 3. 优雅关闭 HTTP 服务器
	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 4. 关闭 Asynq Client
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}

	// 5. 关闭 Redis 连接
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis client: %v", err)
		}
	}

	// 6. 关闭数据库连接
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}

	a.Log.Info("Application shut down complete.")
}
