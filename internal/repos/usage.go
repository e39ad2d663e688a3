package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/types"
)

// UserCreditTotal is one roll-up row of the monthly usage aggregation.
type UserCreditTotal struct {
	UserID           uuid.UUID `json:"userId"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	TotalCreditsUsed int64     `json:"totalCreditsUsed"`
}

type UsageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.UsageRecord) ([]*types.UsageRecord, error)
	SumCreditsByUser(ctx context.Context, tx *gorm.DB, start, end time.Time, onlyUser *uuid.UUID) ([]UserCreditTotal, error)
	ListInWindow(ctx context.Context, tx *gorm.DB, start, end time.Time, onlyUser *uuid.UUID) ([]*types.UsageRecord, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
}

type usageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRepo(db *gorm.DB, baseLog *logger.Logger) UsageRepo {
	return &usageRepo{db: db, log: baseLog.With("repo", "UsageRepo")}
}

func (ur *usageRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.UsageRecord) ([]*types.UsageRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(records) == 0 {
		return []*types.UsageRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (ur *usageRepo) SumCreditsByUser(ctx context.Context, tx *gorm.DB, start, end time.Time, onlyUser *uuid.UUID) ([]UserCreditTotal, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	query := transaction.WithContext(ctx).
		Table("usage_record").
		Select(`usage_record.user_id AS user_id, "user".email AS email, "user".role AS role, SUM(usage_record.credits_used) AS total_credits_used`).
		Joins(`JOIN "user" ON "user".id = usage_record.user_id`).
		Where("usage_record.created_at >= ? AND usage_record.created_at < ?", start, end).
		Group(`usage_record.user_id, "user".email, "user".role`).
		Order("total_credits_used DESC")

	if onlyUser != nil {
		query = query.Where("usage_record.user_id = ?", *onlyUser)
	}

	var results []UserCreditTotal
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (ur *usageRepo) ListInWindow(ctx context.Context, tx *gorm.DB, start, end time.Time, onlyUser *uuid.UUID) ([]*types.UsageRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	query := transaction.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC")

	if onlyUser != nil {
		query = query.Where("user_id = ?", *onlyUser)
	}

	var results []*types.UsageRecord
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (ur *usageRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UsageRecord{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
