package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/types"
)

// AuditLogRepo is append-only on purpose: there is no update or delete
// method, and none should ever be added.
type AuditLogRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entries []*types.AuditLog) ([]*types.AuditLog, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.AuditLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AuditLog, error)
	CountByActionSince(ctx context.Context, tx *gorm.DB, action string, since time.Time) (int64, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (ar *auditLogRepo) Append(ctx context.Context, tx *gorm.DB, entries []*types.AuditLog) ([]*types.AuditLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(entries) == 0 {
		return []*types.AuditLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (ar *auditLogRepo) GetByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.AuditLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.AuditLog

	if len(entryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", entryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (ar *auditLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AuditLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if limit <= 0 {
		limit = 100
	}

	var results []*types.AuditLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (ar *auditLogRepo) CountByActionSince(ctx context.Context, tx *gorm.DB, action string, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AuditLog{}).
		Where("action = ? AND at >= ?", action, since).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
