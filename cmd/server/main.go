package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/compucar/backend/internal/application/catalog"
	checkoutapp "github.com/compucar/backend/internal/application/checkout"
	identityapp "github.com/compucar/backend/internal/application/identity"
	notificationapp "github.com/compucar/backend/internal/application/notification"
	shippingapp "github.com/compucar/backend/internal/application/shipping"
	telegramapp "github.com/compucar/backend/internal/application/telegram"
	tuningapp "github.com/compucar/backend/internal/application/tuning"
	"github.com/compucar/backend/internal/domain/shipping"
	"github.com/compucar/backend/internal/infrastructure/auth"
	"github.com/compucar/backend/internal/infrastructure/cache"
	"github.com/compucar/backend/internal/infrastructure/carrier"
	"github.com/compucar/backend/internal/infrastructure/config"
	"github.com/compucar/backend/internal/infrastructure/event"
	"github.com/compucar/backend/internal/infrastructure/logger"
	"github.com/compucar/backend/internal/infrastructure/persistence"
	"github.com/compucar/backend/internal/infrastructure/storage"
	"github.com/compucar/backend/internal/infrastructure/telegram"
	"github.com/compucar/backend/internal/infrastructure/telemetry"
	"github.com/compucar/backend/internal/interfaces/http/handler"
	"github.com/compucar/backend/internal/interfaces/http/middleware"
	"github.com/compucar/backend/internal/interfaces/http/router"
)

// version is overridden at build time via -ldflags
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CompuCar Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	tuningRepo := persistence.NewGormTuningFileRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Telemetry (optional)
	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		businessMetrics, err = telemetry.NewBusinessMetrics(meterProvider.Meter("compucar-backend"))
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		if err := telemetry.RegisterOtelGorm(db.DB, log); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
		log.Info("Telemetry enabled", zap.String("endpoint", cfg.Telemetry.CollectorEndpoint))
	}

	// Yalidine carrier adapter: both the rate source for quotes and
	// the region directory behind the wilaya/commune/stopdesk lookups
	yalidineConfig := carrier.NewYalidineConfig(cfg.Carrier.APIID, cfg.Carrier.APIToken, cfg.Carrier.FromWilayaID)
	if cfg.Carrier.BaseURL != "" {
		yalidineConfig.BaseURL = cfg.Carrier.BaseURL
	}
	if cfg.Carrier.Timeout > 0 {
		yalidineConfig.Timeout = cfg.Carrier.Timeout
	}
	yalidine, err := carrier.NewYalidineAdapter(yalidineConfig)
	if err != nil {
		log.Fatal("Failed to initialize Yalidine adapter", zap.Error(err))
	}

	// Region cache: Redis when reachable, local fallback otherwise
	var regionCache shipping.RegionCache
	redisRegionCache, err := cache.NewRedisRegionCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithRegionCacheTTL(cfg.Carrier.RegionCacheTTL), cache.WithRegionCacheLogger(log))
	if err != nil {
		log.Warn("Redis region cache unavailable, using in-memory cache", zap.Error(err))
		regionCache = cache.NewInMemoryRegionCache(cfg.Carrier.RegionCacheTTL)
	} else {
		regionCache = redisRegionCache
	}

	// Idempotency store for Telegram callback deduplication
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log), cache.WithInMemoryFallback(true)).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Object storage for tuning file binaries
	objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	log.Info("Object storage initialized", zap.String("bucket", cfg.Storage.Bucket))

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)

	// Token revocation checks are shared across instances through Redis.
	// Without Redis a restart forgets revocations, so only fall back for
	// single-node setups.
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
		defer redisBlacklist.Close()
	}

	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	authService.SetTokenBlacklist(tokenBlacklist)
	productService := catalogapp.NewProductService(productRepo, log)
	regionService := shippingapp.NewRegionService(yalidine, regionCache, log)
	quoteService := shippingapp.NewQuoteService(productRepo, yalidine, log)
	checkoutService := checkoutapp.NewService(orderRepo, productRepo, quoteService, log)
	tuningService := tuningapp.NewService(tuningRepo, objectStorage, log)
	notificationService := notificationapp.NewService(notificationRepo, log)

	if businessMetrics != nil {
		quoteService.SetMetrics(businessMetrics)
		checkoutService.SetMetrics(businessMetrics)
		tuningService.SetMetrics(businessMetrics)
	}

	// Initialize event bus and handlers. The durable inbox handler is
	// registered before the realtime handler: dispatch is in
	// registration order, so a notification is persisted before it is
	// pushed over SSE.
	eventBus := event.NewInMemoryEventBus(log, event.WithHandlerTimeout(cfg.Event.HandlerTimeout))

	durableHandler := notificationapp.NewDurableNotificationHandler(notificationRepo, log)
	eventBus.Subscribe(durableHandler)

	streamHandler := handler.NewNotificationStreamHandler(log)
	defer streamHandler.Stop()

	realtimeHandler := notificationapp.NewRealtimeNotificationHandler(streamHandler, log)
	eventBus.Subscribe(realtimeHandler)

	// Telegram admin bot (optional)
	var webhookHandler *handler.TelegramWebhookHandler
	if cfg.Telegram.BotToken != "" {
		telegramConfig := telegram.NewConfig(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		telegramConfig.WebhookSecret = cfg.Telegram.WebhookSecret
		if cfg.Telegram.Timeout > 0 {
			telegramConfig.Timeout = cfg.Telegram.Timeout
		}
		telegramClient, err := telegram.NewClient(telegramConfig)
		if err != nil {
			log.Fatal("Failed to initialize Telegram client", zap.Error(err))
		}

		botService := telegramapp.NewBotService(telegramClient, tuningService, userRepo, idempotencyStore, log)
		if businessMetrics != nil {
			botService.SetMetrics(businessMetrics)
		}
		eventBus.Subscribe(botService)
		webhookHandler = handler.NewTelegramWebhookHandler(telegramClient, botService, log)
		log.Info("Telegram bot enabled", zap.Int64("admin_chat_id", cfg.Telegram.AdminChatID))
	} else {
		log.Info("Telegram bot disabled: no bot token configured")
	}

	log.Info("Event handlers registered",
		zap.Strings("durable_events", durableHandler.EventTypes()),
		zap.Strings("realtime_events", realtimeHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	authService.SetEventPublisher(eventBus)
	checkoutService.SetEventPublisher(eventBus)
	tuningService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(version)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	shippingHandler := handler.NewShippingHandler(regionService, quoteService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	tuningHandler := handler.NewTuningHandler(tuningService)
	tuningAdminHandler := handler.NewTuningAdminHandler(tuningService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validators
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
		engine.Use(middleware.TraceAttributes())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Telegram webhook callback endpoint. Authenticated by the secret
	// token header, not by JWT.
	if webhookHandler != nil {
		engine.POST("/api/v1/telegram/webhook", webhookHandler.Receive)
	}

	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	})

	// System routes (public)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.Info)

	// Identity: public auth endpoints
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	// Identity: endpoints for the authenticated account
	accountRoutes := router.NewDomainGroup("account", "/auth").Use(jwtAuth)
	accountRoutes.GET("/me", authHandler.Me)
	accountRoutes.PUT("/password", authHandler.ChangePassword)

	// Catalog (public storefront)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.Get)

	// Shipping regions and quotes (public, needed before checkout)
	shippingRoutes := router.NewDomainGroup("shipping", "/shipping")
	shippingRoutes.GET("/wilayas", shippingHandler.Wilayas)
	shippingRoutes.GET("/communes", shippingHandler.Communes)
	shippingRoutes.GET("/stopdesks", shippingHandler.Stopdesks)
	shippingRoutes.POST("/quote", shippingHandler.Quote)

	// Orders (customer)
	orderRoutes := router.NewDomainGroup("orders", "/orders").Use(jwtAuth)
	orderRoutes.POST("", checkoutHandler.PlaceOrder)
	orderRoutes.GET("", checkoutHandler.List)
	orderRoutes.GET("/:id", checkoutHandler.Get)

	// Tuning files (customer)
	tuningRoutes := router.NewDomainGroup("tuning", "/tuning").Use(jwtAuth)
	tuningRoutes.POST("/files", tuningHandler.Upload)
	tuningRoutes.GET("/files", tuningHandler.List)
	tuningRoutes.GET("/files/:id", tuningHandler.Get)
	tuningRoutes.GET("/files/:id/download/original", tuningHandler.DownloadOriginal)
	tuningRoutes.GET("/files/:id/download/modified", tuningHandler.DownloadModified)

	// Notifications: durable inbox plus the SSE stream
	notificationRoutes := router.NewDomainGroup("notifications", "/notifications").Use(jwtAuth)
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
	notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)
	notificationRoutes.DELETE("/:id", notificationHandler.Delete)
	notificationRoutes.GET("/stream", streamHandler.Stream)

	// Admin area
	adminRoutes := router.NewDomainGroup("admin", "/admin").Use(jwtAuth, middleware.RequireAdmin())

	adminProducts := adminRoutes.Group("admin-products", "/products")
	adminProducts.GET("", productHandler.AdminList)
	adminProducts.POST("", productHandler.Create)
	adminProducts.PUT("/:id", productHandler.Update)
	adminProducts.PUT("/:id/price", productHandler.UpdatePrice)
	adminProducts.POST("/:id/stock", productHandler.AdjustStock)
	adminProducts.POST("/:id/activate", productHandler.Activate)
	adminProducts.POST("/:id/deactivate", productHandler.Deactivate)
	adminProducts.DELETE("/:id", productHandler.Delete)

	adminOrders := adminRoutes.Group("admin-orders", "/orders")
	adminOrders.GET("", checkoutHandler.AdminList)
	adminOrders.GET("/:id", checkoutHandler.AdminGet)
	adminOrders.PUT("/:id/status", checkoutHandler.ChangeStatus)

	adminTuning := adminRoutes.Group("admin-tuning", "/tuning/files")
	adminTuning.GET("", tuningAdminHandler.List)
	adminTuning.GET("/counts", tuningAdminHandler.Counts)
	adminTuning.GET("/:id", tuningAdminHandler.Get)
	adminTuning.GET("/:id/audit", tuningAdminHandler.Audit)
	adminTuning.POST("/:id/start", tuningAdminHandler.StartProcessing)
	adminTuning.PUT("/:id/estimate", tuningAdminHandler.SetEstimatedTime)
	adminTuning.PUT("/:id/status", tuningAdminHandler.ChangeStatus)
	adminTuning.PUT("/:id/price", tuningAdminHandler.SetPrice)
	adminTuning.PUT("/:id/payment", tuningAdminHandler.SetPaymentStatus)
	adminTuning.PUT("/:id/notes", tuningAdminHandler.SetNotes)
	adminTuning.POST("/:id/modified-file", tuningAdminHandler.AttachModifiedFile)
	adminTuning.DELETE("/:id", tuningAdminHandler.Delete)

	// Register all domain groups
	r := router.NewRouter(engine)
	r.Register(systemRoutes).
		Register(authRoutes).
		Register(accountRoutes).
		Register(catalogRoutes).
		Register(shippingRoutes).
		Register(orderRoutes).
		Register(tuningRoutes).
		Register(notificationRoutes).
		Register(adminRoutes)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
