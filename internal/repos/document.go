package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/types"
)

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, documents []*types.Document) ([]*types.Document, error)
	GetByIDsForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, documentIDs []uuid.UUID) ([]*types.Document, error)
	SearchByText(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, query string) ([]*types.Document, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (dr *documentRepo) Create(ctx context.Context, tx *gorm.DB, documents []*types.Document) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if len(documents) == 0 {
		return []*types.Document{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&documents).Error; err != nil {
		return nil, err
	}

	return documents, nil
}

func (dr *documentRepo) GetByIDsForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, documentIDs []uuid.UUID) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Document

	if len(documentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", documentIDs, ownerID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (dr *documentRepo) SearchByText(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, query string) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Document

	if err := transaction.WithContext(ctx).
		Where("owner_id = ? AND text_content ILIKE ?", ownerID, "%"+query+"%").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (dr *documentRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
