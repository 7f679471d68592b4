package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/http/dto"
	"deepscifi.app/feed/internal/service"
)

type IngestHandler struct {
	service service.IngestService
}

func NewIngestHandler(service service.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Ingest(ctx, req.ToModel())
	if err != nil {
		if errors.Is(err, service.ErrInvalidItem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to ingest feed item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest event"})
		return
	}

	status := http.StatusAccepted
	if result.Duplicated {
		// Idempotent producer retry: already stored, nothing new accepted.
		status = http.StatusOK
	}
	c.JSON(status, dto.IngestEventResponse{
		Seq:        result.Seq,
		Duplicated: result.Duplicated,
	})
}
