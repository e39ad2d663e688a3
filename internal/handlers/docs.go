package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/services"
)

type DocsHandler struct {
	docs services.DocService
	log  *logger.Logger
}

func NewDocsHandler(docs services.DocService, log *logger.Logger) *DocsHandler {
	return &DocsHandler{
		docs: docs,
		log:  log.With("handler", "DocsHandler"),
	}
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Upload accepts multipart form data: one "file" part, a "primary_tag_id"
// field, and zero or more "secondary_tag_ids" fields.
func (dh *DocsHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	primaryTagID, err := uuid.Parse(c.PostForm("primary_tag_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "primary_tag_id must be a valid id"})
		return
	}

	var secondaryTagIDs []uuid.UUID
	for _, raw := range c.PostFormArray("secondary_tag_ids") {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "secondary_tag_ids contains an invalid id"})
			return
		}
		secondaryTagIDs = append(secondaryTagIDs, id)
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	mime := fileHeader.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	doc, err := dh.docs.Upload(c.Request.Context(), services.UploadInput{
		Filename:        fileHeader.Filename,
		Mime:            mime,
		Content:         content,
		PrimaryTagID:    primaryTagID,
		SecondaryTagIDs: secondaryTagIDs,
	})
	if err != nil {
		RespondServiceError(c, dh.log, err)
		return
	}
	RespondOK(c, doc)
}

func (dh *DocsHandler) ListFolders(c *gin.Context) {
	folders, err := dh.docs.ListFolders(c.Request.Context())
	if err != nil {
		RespondServiceError(c, dh.log, err)
		return
	}
	RespondOK(c, gin.H{"folders": folders})
}

func (dh *DocsHandler) ListFolderDocuments(c *gin.Context) {
	docs, err := dh.docs.ListFolderDocuments(c.Request.Context(), c.Param("tag"))
	if err != nil {
		RespondServiceError(c, dh.log, err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

func (dh *DocsHandler) Search(c *gin.Context) {
	docs, err := dh.docs.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondServiceError(c, dh.log, err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}
