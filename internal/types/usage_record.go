package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionMakeDocument = "make_document"
	ActionMakeCSV      = "make_csv"
)

// UsageRecord is an append-only ledger row. One row is written per scoped
// action run; rows are never mutated.
type UsageRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Action      string    `gorm:"not null;column:action" json:"action"`
	CreditsUsed int       `gorm:"not null;column:credits_used" json:"credits_used"`
	CreatedAt   time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (UsageRecord) TableName() string { return "usage_record" }
