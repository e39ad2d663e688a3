package types

import (
	"time"

	"github.com/google/uuid"
)

// Tag doubles as a folder when it is the primary link target of a document.
// Name uniqueness per owner is not enforced; folder lookup takes the first
// match the store returns.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	IsPrimary bool      `gorm:"not null;default:false;column:is_primary" json:"is_primary"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Tag) TableName() string { return "tag" }
