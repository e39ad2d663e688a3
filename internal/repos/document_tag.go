package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/types"
)

// FolderSummary is one "folder" row: a primary tag plus its document count.
type FolderSummary struct {
	TagID uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Count int64     `json:"count"`
}

// FolderDocument is a document shaped with its folder's tag name.
type FolderDocument struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Mime        string    `json:"mime"`
	TextContent string    `json:"text_content"`
	TagName     string    `json:"tag_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentTagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, links []*types.DocumentTag) ([]*types.DocumentTag, error)
	GetPrimaryByTagIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.DocumentTag, error)
	ListFolders(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]FolderSummary, error)
	ListFolderDocuments(ctx context.Context, tx *gorm.DB, ownerID, tagID uuid.UUID) ([]FolderDocument, error)
}

type documentTagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentTagRepo(db *gorm.DB, baseLog *logger.Logger) DocumentTagRepo {
	return &documentTagRepo{db: db, log: baseLog.With("repo", "DocumentTagRepo")}
}

func (dtr *documentTagRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.DocumentTag) ([]*types.DocumentTag, error) {
	transaction := tx
	if transaction == nil {
		transaction = dtr.db
	}

	if len(links) == 0 {
		return []*types.DocumentTag{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
		return nil, err
	}

	return links, nil
}

func (dtr *documentTagRepo) GetPrimaryByTagIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.DocumentTag, error) {
	transaction := tx
	if transaction == nil {
		transaction = dtr.db
	}

	var results []*types.DocumentTag

	if len(tagIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("tag_id IN ? AND is_primary = ?", tagIDs, true).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (dtr *documentTagRepo) ListFolders(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]FolderSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = dtr.db
	}

	var results []FolderSummary

	if err := transaction.WithContext(ctx).
		Table("document_tag").
		Select("tag.id AS tag_id, tag.name AS name, COUNT(*) AS count").
		Joins("JOIN document ON document.id = document_tag.document_id").
		Joins("JOIN tag ON tag.id = document_tag.tag_id").
		Where("document_tag.is_primary = ? AND document.owner_id = ?", true, ownerID).
		Group("tag.id, tag.name").
		Order("name ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (dtr *documentTagRepo) ListFolderDocuments(ctx context.Context, tx *gorm.DB, ownerID, tagID uuid.UUID) ([]FolderDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = dtr.db
	}

	var results []FolderDocument

	if err := transaction.WithContext(ctx).
		Table("document_tag").
		Select("document.id AS id, document.filename AS filename, document.mime AS mime, document.text_content AS text_content, tag.name AS tag_name, document.created_at AS created_at").
		Joins("JOIN document ON document.id = document_tag.document_id").
		Joins("JOIN tag ON tag.id = document_tag.tag_id").
		Where("document_tag.tag_id = ? AND document_tag.is_primary = ? AND document.owner_id = ?", tagID, true, ownerID).
		Order("document.created_at DESC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
