package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/types"
)

// dailyTaskLimit caps outreach tasks per (user, source, calendar day).
const dailyTaskLimit = 3

// TaskRateLimiter answers whether one more task may be created for the
// (user, source) pair today. Implementations own the day bucketing.
type TaskRateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID, source string, limit int) (bool, error)
}

type WebhookInput struct {
	Source  string                 `json:"source"`
	ImageID string                 `json:"imageId"`
	Text    string                 `json:"text"`
	Meta    map[string]interface{} `json:"meta"`
}

type WebhookResult struct {
	Classification string     `json:"classification"`
	TaskCreated    bool       `json:"taskCreated"`
	TaskID         *uuid.UUID `json:"taskId"`
}

type WebhookService interface {
	Ingest(ctx context.Context, input WebhookInput) (*WebhookResult, error)
}

type webhookService struct {
	db          *gorm.DB
	taskRepo    repos.TaskRepo
	audit       AuditRecorder
	rateLimiter TaskRateLimiter
	log         *logger.Logger
}

// NewWebhookService builds the webhook pipeline. rateLimiter may be nil, in
// which case the limit check is a task-count query inside the same
// transaction as the insert.
func NewWebhookService(
	db *gorm.DB,
	taskRepo repos.TaskRepo,
	audit AuditRecorder,
	rateLimiter TaskRateLimiter,
	baseLog *logger.Logger,
) WebhookService {
	return &webhookService{
		db:          db,
		taskRepo:    taskRepo,
		audit:       audit,
		rateLimiter: rateLimiter,
		log:         baseLog.With("service", "WebhookService"),
	}
}

func localMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func metaUserID(meta map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := meta["userId"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Ingest classifies the inbound text and, for promotional content with an
// unsubscribe contact, creates a rate-limited outreach task. The task and
// its audit entry are written in one transaction with pre-allocated ids so
// they reference each other from birth. Rate-limit exceedance is not an
// error: the call still succeeds with taskCreated false and an audited skip.
func (ws *webhookService) Ingest(ctx context.Context, input WebhookInput) (*WebhookResult, error) {
	if strings.TrimSpace(input.Source) == "" ||
		strings.TrimSpace(input.ImageID) == "" ||
		strings.TrimSpace(input.Text) == "" {
		return nil, apierr.Validation("source, imageId, and text are required")
	}

	userID, ok := metaUserID(input.Meta)
	if !ok {
		return nil, apierr.Validation("user association required (userId in meta)")
	}

	classification := ClassifyText(input.Text)

	metadata := map[string]interface{}{
		"source":         input.Source,
		"imageId":        input.ImageID,
		"classification": classification,
		"meta":           input.Meta,
	}

	result := &WebhookResult{Classification: classification}

	var task *types.Task
	switch classification {
	case ClassificationAd:
		unsub := ExtractUnsubscribe(input.Text)
		if unsub == nil {
			metadata["unsubscribeInfo"] = "not found"
			break
		}

		allowed, err := ws.allowTask(ctx, userID, input.Source)
		if err != nil {
			return nil, err
		}
		if !allowed {
			metadata["taskCreationSkipped"] = "rate limit exceeded"
			break
		}

		taskID := uuid.New()
		metadata["taskId"] = taskID.String()
		task = &types.Task{
			ID:             taskID,
			UserID:         userID,
			Status:         types.TaskStatusPending,
			Channel:        unsub.Channel,
			Target:         unsub.Target,
			Source:         input.Source,
			Classification: classification,
		}
	case ClassificationOfficial:
		metadata["note"] = "official document - no task created"
	}

	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if task != nil {
			// With no external limiter the count check runs here, inside
			// the same transaction as the insert.
			if ws.rateLimiter == nil {
				count, err := ws.taskRepo.CountForUserSourceSince(ctx, tx, userID, input.Source, localMidnight(time.Now()))
				if err != nil {
					return err
				}
				if count >= dailyTaskLimit {
					delete(metadata, "taskId")
					metadata["taskCreationSkipped"] = "rate limit exceeded"
					task = nil
				}
			}
		}

		auditID := uuid.New()
		if task != nil {
			task.AuditLogID = &auditID
			if _, err := ws.taskRepo.Create(ctx, tx, []*types.Task{task}); err != nil {
				return err
			}
		}

		eventID := uuid.New()
		_, err := ws.audit.Record(ctx, tx, []AuditEntry{{
			ID:         auditID,
			UserID:     userID,
			Action:     types.AuditActionWebhookIngest,
			EntityType: types.AuditEntityWebhookEvent,
			EntityID:   &eventID,
			Metadata:   metadata,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	if task != nil {
		result.TaskCreated = true
		taskID := task.ID
		result.TaskID = &taskID
	}

	ws.log.Info("webhook ingested",
		"source", input.Source,
		"classification", classification,
		"task_created", result.TaskCreated,
	)

	return result, nil
}

func (ws *webhookService) allowTask(ctx context.Context, userID uuid.UUID, source string) (bool, error) {
	if ws.rateLimiter == nil {
		// The in-transaction count decides; optimistically proceed.
		return true, nil
	}
	return ws.rateLimiter.Allow(ctx, userID, source, dailyTaskLimit)
}
