package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/types"
)

// AuditRecorder shapes and appends audit entries. Metadata maps are
// marshalled once here so callers never touch raw JSON.
type AuditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entries []AuditEntry) ([]*types.AuditLog, error)
}

// AuditEntry is the service-level shape of one audit event. ID may be
// pre-set when the caller needs to cross-link the entry before insert;
// a zero ID gets a fresh uuid.
type AuditEntry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]interface{}
}

type auditRecorder struct {
	auditLogRepo repos.AuditLogRepo
	log          *logger.Logger
}

func NewAuditRecorder(auditLogRepo repos.AuditLogRepo, baseLog *logger.Logger) AuditRecorder {
	return &auditRecorder{
		auditLogRepo: auditLogRepo,
		log:          baseLog.With("service", "AuditRecorder"),
	}
}

func (ar *auditRecorder) Record(ctx context.Context, tx *gorm.DB, entries []AuditEntry) ([]*types.AuditLog, error) {
	rows := make([]*types.AuditLog, 0, len(entries))
	now := time.Now().UTC()

	for _, entry := range entries {
		id := entry.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		var metadata datatypes.JSON
		if entry.Metadata != nil {
			raw, err := json.Marshal(entry.Metadata)
			if err != nil {
				return nil, err
			}
			metadata = datatypes.JSON(raw)
		}

		rows = append(rows, &types.AuditLog{
			ID:         id,
			At:         now,
			UserID:     entry.UserID,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Metadata:   metadata,
		})
	}

	return ar.auditLogRepo.Append(ctx, tx, rows)
}
