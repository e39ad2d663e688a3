package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)

const (
	TaskChannelEmail = "email"
	TaskChannelURL   = "url"
)

type Task struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Status         string     `gorm:"not null;column:status" json:"status"`
	Channel        string     `gorm:"not null;column:channel" json:"channel"`
	Target         string     `gorm:"not null;column:target" json:"target"`
	Source         string     `gorm:"not null;index;column:source" json:"source"`
	Classification string     `gorm:"not null;column:classification" json:"classification"`
	AuditLogID     *uuid.UUID `gorm:"type:uuid;column:audit_log_id" json:"audit_log_id,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (Task) TableName() string { return "task" }
