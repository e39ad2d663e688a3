package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/services"
)

type WebhookHandler struct {
	webhooks services.WebhookService
	log      *logger.Logger
}

func NewWebhookHandler(webhooks services.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		log:      log.With("handler", "WebhookHandler"),
	}
}

func (wh *WebhookHandler) OCR(c *gin.Context) {
	var req services.WebhookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := wh.webhooks.Ingest(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, wh.log, err)
		return
	}
	RespondOK(c, result)
}
