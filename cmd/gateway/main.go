package main

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/gateway"
	"github.com/bidboard/backend/internal/infrastructure/config"
	"github.com/bidboard/backend/internal/infrastructure/logger"
	"github.com/bidboard/backend/internal/interfaces/http/middleware"
)

const maxControlMessageSize = 4096

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

	log.Info("Starting BidBoard gateway",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Gateway.Port),
		zap.String("upstream", cfg.Gateway.UpstreamURL),
		zap.String("cache_version", cfg.Gateway.CacheVersion),
	)

	upstream, err := url.Parse(cfg.Gateway.UpstreamURL)
	if err != nil {
		log.Fatal("Invalid upstream URL", zap.Error(err))
	}

	// Cache store and cooldown lock: in-process by default, Redis when
	// multiple gateway instances share state
	var store gateway.Store
	var lock gateway.CooldownLock
	if cfg.Gateway.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = gateway.NewRedisStore(client)
		lock = gateway.NewRedisCooldownLock(client)
		log.Info("Using Redis cache backend", zap.String("addr", cfg.Redis.Addr()))
	} else {
		store = gateway.NewMemoryStore()
		lock = gateway.NewMemoryCooldownLock()
	}

	manager := gateway.NewLifecycleManager(store, upstream, cfg.Gateway.CacheVersion, log)

	// Precache the app shell. An unreachable upstream is not fatal: the
	// gateway still serves whatever an earlier run left in the store.
	if len(cfg.Gateway.Precache) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := manager.Install(ctx, cfg.Gateway.Precache); err != nil {
			log.Warn("Precache install failed, serving existing cache", zap.Error(err))
		} else if err := manager.Activate(ctx); err != nil {
			log.Warn("Cache activation failed", zap.Error(err))
		}
		cancel()
	}

	engine := gateway.NewStrategyEngine(upstream, store, manager,
		gateway.WithAPIPrefixes(cfg.Gateway.APIPrefixes),
		gateway.WithEngineLogger(log),
	)
	controller := gateway.NewController(manager, lock, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.Recovery(log))
	r.Use(logger.GinMiddleware(log))

	r.GET("/gateway/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": manager.Version()})
	})

	// Control channel: clients post skip-waiting and reload requests here
	r.POST("/gateway/control", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxControlMessageSize))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		msg, err := gateway.ParseControlMessage(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := controller.Handle(c.Request.Context(), msg); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"accepted": true})
	})

	// Broadcast stream: reload and activation notices as server-sent events
	r.GET("/gateway/events", func(c *gin.Context) {
		ch, unsubscribe := controller.Subscribe()
		defer unsubscribe()

		c.Writer.Header().Set("Cache-Control", "no-store")
		c.Stream(func(w io.Writer) bool {
			select {
			case msg, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("control", msg)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	})

	// Everything else goes through the caching proxy
	r.NoRoute(gin.WrapH(engine))

	srv := &http.Server{
		Addr:        ":" + cfg.Gateway.Port,
		Handler:     r,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Gateway starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start gateway", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Gateway forced to shutdown", zap.Error(err))
	}

	log.Info("Gateway exited gracefully")
}
