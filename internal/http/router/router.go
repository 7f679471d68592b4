package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/http/handler"
	"deepscifi.app/feed/internal/service"
)

type RouterConfig struct {
	StreamHeartbeat time.Duration
}

type Services struct {
	Feed   service.FeedService
	Ingest service.IngestService
	Broker handler.Subscriber
}

func SetupRoutes(router *gin.Engine, services Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		feedHandler := handler.NewFeedHandler(services.Feed)
		streamHandler := handler.NewStreamHandler(services.Broker, cfg.StreamHeartbeat)
		FeedRouter(api.Group("/feed"), feedHandler, streamHandler)

		ingestHandler := handler.NewIngestHandler(services.Ingest)
		EventRouter(api.Group("/events"), ingestHandler)
	}
}
