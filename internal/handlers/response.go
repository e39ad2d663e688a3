package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
)

// RespondServiceError maps a service error to its HTTP status. Internal
// causes are logged and replaced with a generic message so they are never
// echoed to the caller.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	status := apierr.StatusOf(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "error", err)
		}
		msg = "internal error"
	}

	code := ""
	var ae *apierr.Error
	if errors.As(err, &ae) {
		code = ae.Code
	}

	c.JSON(status, gin.H{"error": msg, "code": code})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
