package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/cursor"
	"deepscifi.app/feed/internal/http/dto"
	"deepscifi.app/feed/internal/service"
)

type FeedHandler struct {
	service service.FeedService
}

func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()

	var cur *string
	if raw := c.Query("cursor"); raw != "" {
		cur = &raw
	}

	limit := service.DefaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = int32(n)
	}

	page, err := h.service.GetFeed(ctx, cur, limit)
	if err != nil {
		if errors.Is(err, cursor.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		slog.ErrorContext(ctx, "failed to load feed page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, dto.FeedResponse{
		Items:      page.Items,
		NextCursor: page.NextCursor,
	})
}
