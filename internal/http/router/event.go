package router

import (
	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/http/handler"
)

func EventRouter(router *gin.RouterGroup, handler *handler.IngestHandler) {
	router.POST("", handler.Ingest)
}
