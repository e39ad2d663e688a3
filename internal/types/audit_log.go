package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditActionUploadDoc     = "upload_doc"
	AuditActionCreateTask    = "create_task"
	AuditActionWebhookIngest = "webhook_ingest"
	AuditActionScopedAction  = "scoped_action"
)

const (
	AuditEntityDocument     = "document"
	AuditEntityTag          = "tag"
	AuditEntityTask         = "task"
	AuditEntityWebhookEvent = "webhook_event"
	AuditEntityScoped       = "scoped"
)

// AuditLog is append-only. At is the event time; no repo exposes an update
// or delete path for this table.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	At         time.Time      `gorm:"not null;default:now();index" json:"at"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Action     string         `gorm:"not null;index;column:action" json:"action"`
	EntityType string         `gorm:"not null;column:entity_type" json:"entity_type"`
	EntityID   *uuid.UUID     `gorm:"type:uuid;column:entity_id" json:"entity_id,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
}

func (AuditLog) TableName() string { return "audit_log" }
