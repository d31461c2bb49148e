package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
	notificationapp "github.com/bidboard/backend/internal/application/notification"
	"github.com/bidboard/backend/internal/infrastructure/auth"
	"github.com/bidboard/backend/internal/infrastructure/billing"
	"github.com/bidboard/backend/internal/infrastructure/config"
	"github.com/bidboard/backend/internal/infrastructure/email"
	"github.com/bidboard/backend/internal/infrastructure/event"
	"github.com/bidboard/backend/internal/infrastructure/logger"
	"github.com/bidboard/backend/internal/infrastructure/persistence"
	"github.com/bidboard/backend/internal/infrastructure/storage"
	"github.com/bidboard/backend/internal/interfaces/http/handler"
	"github.com/bidboard/backend/internal/interfaces/http/middleware"
	"github.com/bidboard/backend/internal/interfaces/http/router"
	"github.com/bidboard/backend/internal/realtime"
)

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

	log.Info("Starting BidBoard API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	rfpRepo := persistence.NewGormRfpRepository(db.DB)
	bidRepo := persistence.NewGormBidRequestRepository(db.DB)
	docRepo := persistence.NewGormDocumentRepository(db.DB)
	listingRepo := persistence.NewGormFeaturedListingRepository(db.DB)
	notifRepo := persistence.NewGormNotificationRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Token verification for API requests and websocket auth frames
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiration)

	// Realtime hub for notification push
	var hub *realtime.Hub
	var publisher notificationapp.RealtimePublisher
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(jwtService, log)
		publisher = hub
	}

	// Reminder emails are optional; without an API key notifications stay
	// in-app only
	var emailSender notificationapp.EmailSender
	if cfg.Sweep.EmailEnabled {
		sender, err := email.NewResendSender(&cfg.Email, log)
		if err != nil {
			log.Warn("Email sender not configured, reminder emails disabled", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	notificationService := notificationapp.NewService(notifRepo, userRepo, publisher, emailSender, log)

	// Document storage: S3-compatible object store, or a stub that rejects
	// uploads when no store is configured
	var docStorage marketplaceapp.DocumentStorage
	if cfg.Storage.Endpoint != "" && cfg.Storage.AccessKey != "" {
		s3Storage, err := storage.NewS3DocumentStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		docStorage = s3Storage
		log.Info("Document storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		docStorage = storage.NewStubDocumentStorage()
		log.Warn("No object storage configured, document uploads disabled")
	}

	// Initialize application services
	rfpService := marketplaceapp.NewRfpService(rfpRepo, bidRepo, docRepo, userRepo, eventBus, notificationService, log)
	bidService := marketplaceapp.NewBidService(bidRepo, rfpRepo, userRepo, eventBus, notificationService, log)
	documentService := marketplaceapp.NewDocumentService(docRepo, rfpRepo, docStorage, log)

	// Featured listings need Stripe; without a key the purchase endpoints
	// are not registered
	var listingService *marketplaceapp.ListingService
	var webhookHandler *handler.StripeWebhookHandler
	if cfg.Billing.SecretKey != "" {
		stripeAdapter, err := billing.NewStripeAdapter(&cfg.Billing, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe", zap.Error(err))
		}
		price, err := decimal.NewFromString(cfg.Billing.ListingPrice)
		if err != nil {
			log.Fatal("Invalid listing price", zap.String("price", cfg.Billing.ListingPrice), zap.Error(err))
		}
		listingService = marketplaceapp.NewListingService(listingRepo, rfpRepo, stripeAdapter, eventBus,
			marketplaceapp.ListingConfig{
				Price:      price,
				Currency:   cfg.Billing.Currency,
				Duration:   time.Duration(cfg.Billing.ListingDays) * 24 * time.Hour,
				SuccessURL: cfg.Billing.SuccessURL,
				CancelURL:  cfg.Billing.CancelURL,
			}, log)
		webhookHandler = handler.NewStripeWebhookHandler(stripeAdapter, listingService, log)
	} else {
		log.Warn("Stripe not configured, featured listings disabled")
	}

	// Deadline sweep: reminders ahead of bid deadlines, auto-close after
	if cfg.Sweep.Enabled {
		sweeper := notificationapp.NewDeadlineSweeper(rfpRepo, bidRepo, notifRepo, notificationService,
			cfg.Sweep.Interval, cfg.Sweep.Lookahead, cfg.Sweep.DedupWindow, log)
		sweeper.Start(context.Background())
		defer sweeper.Stop()
		log.Info("Deadline sweeper started",
			zap.Duration("interval", cfg.Sweep.Interval),
			zap.Duration("lookahead", cfg.Sweep.Lookahead),
		)
	}

	// Initialize HTTP handlers
	rfpHandler := handler.NewRfpHandler(rfpService)
	bidHandler := handler.NewBidHandler(bidService)
	documentHandler := handler.NewDocumentHandler(documentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Stripe webhook, called by Stripe with its own signature scheme
	if webhookHandler != nil {
		engine.POST("/webhooks/stripe", webhookHandler.HandleWebhook)
	}

	// Notification websocket; connections authenticate with their first frame
	if hub != nil {
		engine.GET("/ws/notifications", gin.WrapH(hub))
	}

	// Public marketplace reads: browsing RFPs needs no account
	public := engine.Group("/api/v1")
	public.GET("/rfps", rfpHandler.Search)
	public.GET("/rfps/:id", rfpHandler.GetByID)
	public.GET("/rfps/:id/documents", documentHandler.ListForRfp)

	// Authenticated API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	rfpRoutes := router.NewDomainGroup("/rfps")
	rfpRoutes.POST("", rfpHandler.Create)
	rfpRoutes.GET("/mine", rfpHandler.ListMine)
	rfpRoutes.POST("/:id/publish", rfpHandler.Publish)
	rfpRoutes.POST("/:id/close", rfpHandler.Close)
	rfpRoutes.POST("/:id/award", rfpHandler.Award)
	rfpRoutes.POST("/:id/bids", bidHandler.Submit)
	rfpRoutes.GET("/:id/bids", bidHandler.ListForRfp)
	rfpRoutes.POST("/:id/documents", documentHandler.InitiateUpload)
	if listingService != nil {
		listingHandler := handler.NewListingHandler(listingService)
		rfpRoutes.POST("/:id/feature", listingHandler.StartCheckout)
	}

	bidRoutes := router.NewDomainGroup("/bids")
	bidRoutes.GET("/mine", bidHandler.ListMine)
	bidRoutes.POST("/:id/respond", bidHandler.Respond)
	bidRoutes.POST("/:id/withdraw", bidHandler.Withdraw)

	documentRoutes := router.NewDomainGroup("/documents")
	documentRoutes.POST("/:id/confirm", documentHandler.ConfirmUpload)
	documentRoutes.DELETE("/:id", documentHandler.Delete)

	notificationRoutes := router.NewDomainGroup("/notifications")
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
	notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)

	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(rfpRoutes).
		Register(bidRoutes).
		Register(documentRoutes).
		Register(notificationRoutes).
		Register(systemRoutes)

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
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
