package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/types"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tags []*types.Tag) ([]*types.Tag, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.Tag, error)
	GetByOwnerAndName(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) ([]*types.Tag, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Tag, error)
	CountByOwnerAndIDs(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, tagIDs []uuid.UUID) (int64, error)
	UpdateName(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, name string) error
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (tr *tagRepo) Create(ctx context.Context, tx *gorm.DB, tags []*types.Tag) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tags) == 0 {
		return []*types.Tag{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tags).Error; err != nil {
		return nil, err
	}

	return tags, nil
}

func (tr *tagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag

	if len(tagIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", tagIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

// GetByOwnerAndName returns every tag of the owner with that name. Name
// uniqueness per owner is not enforced at creation; callers that need a
// single folder take the first row.
func (tr *tagRepo) GetByOwnerAndName(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag

	if err := transaction.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (tr *tagRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag

	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (tr *tagRepo) CountByOwnerAndIDs(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, tagIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tagIDs) == 0 {
		return 0, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Tag{}).
		Where("owner_id = ? AND id IN ?", ownerID, tagIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (tr *tagRepo) UpdateName(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, name string) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("name", name).Error
}

func (tr *tagRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Tag{}).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
