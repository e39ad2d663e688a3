package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/services"
)

type ActionsHandler struct {
	scopedActions services.ScopedActionService
	log           *logger.Logger
}

func NewActionsHandler(scopedActions services.ScopedActionService, log *logger.Logger) *ActionsHandler {
	return &ActionsHandler{
		scopedActions: scopedActions,
		log:           log.With("handler", "ActionsHandler"),
	}
}

func (ah *ActionsHandler) Run(c *gin.Context) {
	var req services.RunInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := ah.scopedActions.Run(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, ah.log, err)
		return
	}
	RespondOK(c, result)
}

func (ah *ActionsHandler) MonthlyUsage(c *gin.Context) {
	result, err := ah.scopedActions.MonthlyUsage(c.Request.Context())
	if err != nil {
		RespondServiceError(c, ah.log, err)
		return
	}
	RespondOK(c, result)
}
