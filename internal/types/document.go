package types

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`
	Filename    string    `gorm:"not null;column:filename" json:"filename"`
	Mime        string    `gorm:"not null;column:mime" json:"mime"`
	TextContent string    `gorm:"column:text_content" json:"text_content"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Document) TableName() string { return "document" }
