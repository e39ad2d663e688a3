package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "admin"
	RoleSupport   = "support"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

const DefaultUserCredits = 100

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	Role      string    `gorm:"not null;default:user;column:role" json:"role"`
	Credits   int       `gorm:"not null;default:100;column:credits" json:"credits"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSupport, RoleModerator, RoleUser:
		return true
	}
	return false
}
