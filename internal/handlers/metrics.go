package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/services"
)

type MetricsHandler struct {
	metrics services.MetricsService
	log     *logger.Logger
}

func NewMetricsHandler(metrics services.MetricsService, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		log:     log.With("handler", "MetricsHandler"),
	}
}

func (mh *MetricsHandler) Snapshot(c *gin.Context) {
	snapshot, err := mh.metrics.Snapshot(c.Request.Context())
	if err != nil {
		RespondServiceError(c, mh.log, err)
		return
	}
	RespondOK(c, snapshot)
}
