package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/erp/channelsync/internal/infrastructure/logger"
	"github.com/erp/channelsync/internal/interfaces/http/handler"
	"github.com/erp/channelsync/internal/interfaces/http/middleware"
	"github.com/erp/channelsync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Channel Sync API
//	@version		1.0
//	@description	Channel-driven sales order synchronization
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting channel sync server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := buildEngine(container)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// buildEngine applies the middleware stack and registers every route
func buildEngine(c *bootstrap.Container) *gin.Engine {
	cfg, log := c.Config, c.Logger

	if err := middleware.SetupValidator(); err != nil {
		log.Warn("Request validation rules not registered", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the tracer and the
	// request logger read it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     c.Telemetry.TracingEnabled(),
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.SpanAnnotator())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.HTTPMetrics(c.Telemetry.Meter("http.server")))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, bootstrap.Version, c.Database)
	engine.GET("/health", systemHandler.Health)

	r := router.New(engine, "v1")
	if cfg.JWT.Secret != "" {
		r.Use(middleware.BearerAuth(middleware.AuthConfig{
			Tokens: c.JWT,
			Public: []string{"/api/v1/system/info"},
			Logger: log.Named("auth"),
		}))
	} else {
		log.Warn("jwt.secret is empty, callers are identified by the " + middleware.UserIDHeader + " header")
		r.Use(middleware.HeaderIdentity())
	}
	r.Use(middleware.ChannelScope(c.AccessGate, log))

	salesOrders := handler.NewSalesOrderHandler(c.SalesOrders, c.ChannelSync, c.Exceptions)
	salesOrders.SetStrictBatch(cfg.Sync.StrictBatch)

	router.RegisterAPI(r, router.Handlers{
		SalesOrders:       salesOrders,
		ChannelExceptions: handler.NewChannelExceptionHandler(c.Exceptions),
		Channels:          handler.NewChannelHandler(c.Channels, c.AccessGate),
		System:            systemHandler,
	})
	r.Setup()

	return engine
}
