package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"deepscifi.app/feed/common/id"
	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/common/otel"
	"deepscifi.app/feed/core/config"
	"deepscifi.app/feed/core/db"
	"deepscifi.app/feed/internal/http/middleware"
	httprouter "deepscifi.app/feed/internal/http/router"
	"deepscifi.app/feed/internal/service"
	"deepscifi.app/feed/internal/store"
	"deepscifi.app/feed/internal/stream"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "feed server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Stream.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "channel", cfg.Stream.Channel)

	publisher := stream.NewRedisPublisher(redisClient, cfg.Stream.Channel, nil)

	// The broker needs its own pub/sub connection; sharing the publisher's
	// client would put the connection into subscriber mode.
	broker := stream.NewBroker(redis.NewClient(redisOpts), cfg.Stream.Channel, cfg.Stream.SubscriberBuffer)

	brokerCtx, stopBroker := context.WithCancel(ctx)
	defer stopBroker()
	go func() {
		if err := broker.Run(brokerCtx); err != nil {
			// SSE subscribers are closed on return; clients fall back to
			// polling, so a dead broker degrades delivery, not availability.
			slog.ErrorContext(brokerCtx, "stream broker stopped", "error", err)
		}
	}()

	feedStore := store.NewFeedStore(database.Pool())

	services := httprouter.Services{
		Feed:   service.NewFeedService(feedStore),
		Ingest: service.NewIngestService(feedStore, publisher, nil),
		Broker: broker,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// SSE connections outlive any sane write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")
	stopBroker()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := publisher.Close(); err != nil {
		slog.ErrorContext(shutdownCtx, "redis close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services httprouter.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		StreamHeartbeat: 15 * time.Second,
	})

	return router
}

const banner = `
██████╗ ███████╗███████╗██████╗     ███████╗███████╗███████╗██████╗
██╔══██╗██╔════╝██╔════╝██╔══██╗    ██╔════╝██╔════╝██╔════╝██╔══██╗
██║  ██║█████╗  █████╗  ██████╔╝    █████╗  █████╗  █████╗  ██║  ██║
██║  ██║██╔══╝  ██╔══╝  ██╔═══╝     ██╔══╝  ██╔══╝  ██╔══╝  ██║  ██║
██████╔╝███████╗███████╗██║         ██║     ███████╗███████╗██████╔╝
╚═════╝ ╚══════╝╚══════╝╚═╝         ╚═╝     ╚══════╝╚══════╝╚═════╝
`
