package types

import (
	"time"

	"github.com/google/uuid"
)

// DocumentTag links a document to a tag. Each document has exactly one row
// with IsPrimary true at any time; secondary links are unbounded. Rows are
// created alongside the document and never updated.
type DocumentTag struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`
	TagID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tag_id"`
	Tag        *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TagID;references:ID" json:"-"`
	IsPrimary  bool      `gorm:"not null;column:is_primary" json:"is_primary"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DocumentTag) TableName() string { return "document_tag" }
