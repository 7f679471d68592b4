package router

import (
	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/http/handler"
)

func FeedRouter(router *gin.RouterGroup, feed *handler.FeedHandler, stream *handler.StreamHandler) {
	router.GET("", feed.GetFeed)
	router.GET("/stream", stream.Stream)
}
