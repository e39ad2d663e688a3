package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/services"
)

type TagsHandler struct {
	tags services.TagService
	log  *logger.Logger
}

func NewTagsHandler(tags services.TagService, log *logger.Logger) *TagsHandler {
	return &TagsHandler{
		tags: tags,
		log:  log.With("handler", "TagsHandler"),
	}
}

func (th *TagsHandler) Create(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		IsPrimary bool   `json:"is_primary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := th.tags.Create(c.Request.Context(), req.Name, req.IsPrimary)
	if err != nil {
		RespondServiceError(c, th.log, err)
		return
	}
	RespondOK(c, tag)
}

func (th *TagsHandler) List(c *gin.Context) {
	tags, err := th.tags.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, th.log, err)
		return
	}
	RespondOK(c, gin.H{"tags": tags})
}

func (th *TagsHandler) UpdateName(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid id"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := th.tags.UpdateName(c.Request.Context(), tagID, req.Name)
	if err != nil {
		RespondServiceError(c, th.log, err)
		return
	}
	RespondOK(c, tag)
}
