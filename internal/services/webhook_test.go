package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/repos/testutil"
	"github.com/docvault/docvault-backend/internal/types"
)

func newWebhookFixture(t *testing.T, tx *gorm.DB) (WebhookService, repos.TaskRepo, repos.AuditLogRepo) {
	t.Helper()
	log := testutil.Logger(t)

	taskRepo := repos.NewTaskRepo(tx, log)
	auditLogRepo := repos.NewAuditLogRepo(tx, log)
	audit := NewAuditRecorder(auditLogRepo, log)

	svc := NewWebhookService(tx, taskRepo, audit, nil, log)
	return svc, taskRepo, auditLogRepo
}

func adInput(userID, target string, n int) WebhookInput {
	return WebhookInput{
		Source:  "scanner-1",
		ImageID: fmt.Sprintf("img-%d", n),
		Text:    "Limited time sale! unsubscribe at " + target,
		Meta:    map[string]interface{}{"userId": userID},
	}
}

func TestWebhookIngestValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, _, _ := newWebhookFixture(t, tx)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, WebhookInput{Source: "s", ImageID: "i"})
	if err == nil || apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %v", err)
	}

	_, err = svc.Ingest(ctx, WebhookInput{Source: "s", ImageID: "i", Text: "hello"})
	if err == nil || apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing meta.userId, got %v", err)
	}
}

func TestWebhookIngestOfficial(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, auditLogRepo := newWebhookFixture(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "hook-official@example.com", types.RoleUser)

	result, err := svc.Ingest(ctx, WebhookInput{
		Source:  "scanner-1",
		ImageID: "img-1",
		Text:    "Please see invoice total: $45.00",
		Meta:    map[string]interface{}{"userId": u.ID.String()},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Classification != ClassificationOfficial {
		t.Fatalf("classification: got %q", result.Classification)
	}
	if result.TaskCreated || result.TaskID != nil {
		t.Fatalf("official text must not create a task: %+v", result)
	}

	entries, err := auditLogRepo.ListByUser(ctx, tx, u.ID, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(entries))
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(entries[0].Metadata, &metadata); err != nil {
		t.Fatalf("metadata unmarshal: %v", err)
	}
	if metadata["note"] != "official document - no task created" {
		t.Fatalf("metadata note: got %v", metadata["note"])
	}
}

func TestWebhookIngestAdCreatesTask(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, taskRepo, auditLogRepo := newWebhookFixture(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "hook-ad@example.com", types.RoleUser)

	result, err := svc.Ingest(ctx, adInput(u.ID.String(), "bye@x.com", 1))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Classification != ClassificationAd || !result.TaskCreated || result.TaskID == nil {
		t.Fatalf("unexpected result: %+v", result)
	}

	tasks, err := taskRepo.GetByIDs(ctx, tx, []uuid.UUID{*result.TaskID})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(tasks))
	}
	task := tasks[0]
	if task.Channel != types.TaskChannelEmail || task.Target != "bye@x.com" {
		t.Fatalf("task contact wrong: %+v", task)
	}
	if task.Status != types.TaskStatusPending {
		t.Fatalf("task status: got %q", task.Status)
	}
	if task.AuditLogID == nil {
		t.Fatalf("task must reference its audit entry")
	}

	// The audit entry references the task back through its metadata.
	entries, err := auditLogRepo.GetByIDs(ctx, tx, []uuid.UUID{*task.AuditLogID})
	if err != nil || len(entries) != 1 {
		t.Fatalf("audit GetByIDs: err=%v len=%d", err, len(entries))
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(entries[0].Metadata, &metadata); err != nil {
		t.Fatalf("metadata unmarshal: %v", err)
	}
	if metadata["taskId"] != task.ID.String() {
		t.Fatalf("metadata taskId: got %v", metadata["taskId"])
	}
}

func TestWebhookIngestAdWithoutContact(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, auditLogRepo := newWebhookFixture(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "hook-nocontact@example.com", types.RoleUser)

	result, err := svc.Ingest(ctx, WebhookInput{
		Source:  "scanner-1",
		ImageID: "img-1",
		Text:    "Huge discount this weekend",
		Meta:    map[string]interface{}{"userId": u.ID.String()},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Classification != ClassificationAd || result.TaskCreated {
		t.Fatalf("unexpected result: %+v", result)
	}

	entries, err := auditLogRepo.ListByUser(ctx, tx, u.ID, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(entries))
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(entries[0].Metadata, &metadata); err != nil {
		t.Fatalf("metadata unmarshal: %v", err)
	}
	if metadata["unsubscribeInfo"] != "not found" {
		t.Fatalf("metadata unsubscribeInfo: got %v", metadata["unsubscribeInfo"])
	}
}

func TestWebhookIngestRateLimit(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, auditLogRepo := newWebhookFixture(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "hook-limit@example.com", types.RoleUser)

	for i := 1; i <= 3; i++ {
		result, err := svc.Ingest(ctx, adInput(u.ID.String(), "bye@x.com", i))
		if err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
		if !result.TaskCreated {
			t.Fatalf("Ingest %d: expected task created", i)
		}
	}

	// The fourth qualifying event in the same window is an audited skip,
	// not an error.
	result, err := svc.Ingest(ctx, adInput(u.ID.String(), "bye@x.com", 4))
	if err != nil {
		t.Fatalf("fourth Ingest: %v", err)
	}
	if result.TaskCreated || result.TaskID != nil {
		t.Fatalf("fourth event must be skipped: %+v", result)
	}

	entries, err := auditLogRepo.ListByUser(ctx, tx, u.ID, 10)
	if err != nil || len(entries) != 4 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(entries))
	}

	var skips int
	for _, e := range entries {
		var metadata map[string]interface{}
		if err := json.Unmarshal(e.Metadata, &metadata); err != nil {
			t.Fatalf("metadata unmarshal: %v", err)
		}
		if metadata["taskCreationSkipped"] == "rate limit exceeded" {
			skips++
		}
	}
	if skips != 1 {
		t.Fatalf("expected exactly 1 audited skip, got %d", skips)
	}
}
