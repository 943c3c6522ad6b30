package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/domain/stats"
	"github.com/gin-gonic/gin"
)

type ImpactReader interface {
	Impact(ctx context.Context) (stats.Impact, error)
}

type StatsHandler struct {
	stats ImpactReader
}

func NewStatsHandler(s ImpactReader) *StatsHandler {
	return &StatsHandler{stats: s}
}

// Impact is public; clients can revalidate with If-None-Match.
func (h *StatsHandler) Impact(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	impact, err := h.stats.Impact(cctx)
	if err != nil {
		respondServiceError(ctx, err, "Could not compute impact stats")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, impact)
}
