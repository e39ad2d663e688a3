package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/repos/testutil"
	"github.com/docvault/docvault-backend/internal/requestdata"
	"github.com/docvault/docvault-backend/internal/types"
)

func newScopedActionFixture(t *testing.T, tx *gorm.DB) (ScopedActionService, repos.UserRepo, repos.DocumentRepo, repos.UsageRepo, repos.AuditLogRepo) {
	t.Helper()
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(tx, log)
	tagRepo := repos.NewTagRepo(tx, log)
	documentRepo := repos.NewDocumentRepo(tx, log)
	documentTagRepo := repos.NewDocumentTagRepo(tx, log)
	usageRepo := repos.NewUsageRepo(tx, log)
	auditLogRepo := repos.NewAuditLogRepo(tx, log)

	fileStore := NewLocalFileStore(t.TempDir(), log)
	audit := NewAuditRecorder(auditLogRepo, log)
	resolver := NewScopeResolver(tagRepo, documentRepo, documentTagRepo, log)

	svc := NewScopedActionService(tx, resolver, fileStore, audit, documentRepo, documentTagRepo, userRepo, usageRepo, log)
	return svc, userRepo, documentRepo, usageRepo, auditLogRepo
}

func userCtx(u *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	})
}

func TestScopedActionRunFilesScope(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, userRepo, _, usageRepo, auditLogRepo := newScopedActionFixture(t, tx)

	u := testutil.SeedUser(t, ctx, tx, "run-files@example.com", types.RoleUser)
	docA := testutil.SeedDocument(t, ctx, tx, u.ID, "a.txt", "Vendor: Acme Total: $45.00")
	docB := testutil.SeedDocument(t, ctx, tx, u.ID, "b.txt", "plain note")

	result, err := svc.Run(userCtx(u), RunInput{
		Scope:    ScopePayload{Type: "files", IDs: []string{docA.ID.String(), docB.ID.String()}},
		Messages: []Message{{Role: "user", Content: "summarize"}},
		Actions:  []string{"make_document", "make_csv"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(result.Created))
	}
	if result.CreditsCharged != 5 {
		t.Fatalf("credits_charged: expected 5, got %d", result.CreditsCharged)
	}
	if result.Warnings == nil || len(result.Warnings) != 0 {
		t.Fatalf("warnings: expected empty slice, got %v", result.Warnings)
	}
	if result.Created[0].Mime != "text/plain" || result.Created[1].Mime != "text/csv" {
		t.Fatalf("artifact mimes wrong: %+v", result.Created)
	}
	if !strings.HasPrefix(result.Created[0].Filename, "action_summary_") {
		t.Fatalf("summary filename wrong: %s", result.Created[0].Filename)
	}
	if !strings.HasSuffix(result.Created[1].Filename, ".csv") {
		t.Fatalf("table filename wrong: %s", result.Created[1].Filename)
	}

	// Balance debited by the flat fee.
	got, err := userRepo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(got))
	}
	if got[0].Credits != types.DefaultUserCredits-5 {
		t.Fatalf("credits: expected %d, got %d", types.DefaultUserCredits-5, got[0].Credits)
	}

	// One ledger row, tagged with the first requested action.
	window, err := usageRepo.ListInWindow(ctx, tx, got[0].CreatedAt.AddDate(0, 0, -1), got[0].CreatedAt.AddDate(0, 0, 1), &u.ID)
	if err != nil || len(window) != 1 {
		t.Fatalf("ListInWindow: err=%v len=%d", err, len(window))
	}
	if window[0].Action != types.ActionMakeDocument || window[0].CreditsUsed != 5 {
		t.Fatalf("usage record wrong: %+v", window[0])
	}

	// One run entry plus one per artifact.
	entries, err := auditLogRepo.ListByUser(ctx, tx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("audit entries: expected 3, got %d", len(entries))
	}
	var runs, uploads int
	for _, e := range entries {
		switch e.Action {
		case types.AuditActionScopedAction:
			runs++
		case types.AuditActionUploadDoc:
			uploads++
		}
	}
	if runs != 1 || uploads != 2 {
		t.Fatalf("audit mix: runs=%d uploads=%d", runs, uploads)
	}
}

func TestScopedActionRunNotIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, documentRepo, _, _ := newScopedActionFixture(t, tx)

	u := testutil.SeedUser(t, ctx, tx, "run-twice@example.com", types.RoleUser)
	doc := testutil.SeedDocument(t, ctx, tx, u.ID, "a.txt", "text")

	input := RunInput{
		Scope:    ScopePayload{Type: "files", IDs: []string{doc.ID.String()}},
		Messages: []Message{{Role: "user", Content: "go"}},
		Actions:  []string{"make_csv"},
	}

	first, err := svc.Run(userCtx(u), input)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := svc.Run(userCtx(u), input)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.Created[0].ID == second.Created[0].ID {
		t.Fatalf("identical runs must create independent artifacts")
	}

	// Both generated tables exist as independent documents.
	got, err := documentRepo.GetByIDsForOwner(ctx, tx, u.ID, []uuid.UUID{first.Created[0].ID, second.Created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDsForOwner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 generated documents, got %d", len(got))
	}
}

func TestScopedActionRunFolderScope(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, _, _, _ := newScopedActionFixture(t, tx)

	u := testutil.SeedUser(t, ctx, tx, "run-folder@example.com", types.RoleUser)
	folder := testutil.SeedTag(t, ctx, tx, u.ID, "invoices")
	doc := testutil.SeedDocument(t, ctx, tx, u.ID, "inv.txt", "total: 12")
	testutil.SeedDocumentTag(t, ctx, tx, doc.ID, folder.ID, true)

	result, err := svc.Run(userCtx(u), RunInput{
		Scope:    ScopePayload{Type: "folder", Name: "invoices"},
		Messages: []Message{{Role: "user", Content: "summarize"}},
		Actions:  []string{"make_document"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(result.Created))
	}

	_, err = svc.Run(userCtx(u), RunInput{
		Scope:    ScopePayload{Type: "folder", Name: "missing"},
		Messages: []Message{{Role: "user", Content: "summarize"}},
		Actions:  []string{"make_document"},
	})
	if err == nil {
		t.Fatalf("expected NotFound for missing folder")
	}
}

func TestScopedActionRunOwnershipAllOrNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, _, _, _ := newScopedActionFixture(t, tx)

	u := testutil.SeedUser(t, ctx, tx, "run-owner@example.com", types.RoleUser)
	other := testutil.SeedUser(t, ctx, tx, "run-other@example.com", types.RoleUser)
	mine := testutil.SeedDocument(t, ctx, tx, u.ID, "mine.txt", "x")
	theirs := testutil.SeedDocument(t, ctx, tx, other.ID, "theirs.txt", "y")

	_, err := svc.Run(userCtx(u), RunInput{
		Scope:    ScopePayload{Type: "files", IDs: []string{mine.ID.String(), theirs.ID.String()}},
		Messages: []Message{{Role: "user", Content: "go"}},
		Actions:  []string{"make_csv"},
	})
	if err == nil {
		t.Fatalf("expected failure when any document is not owned")
	}
}

func TestScopedActionRunRoleGate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, _, _, _, _ := newScopedActionFixture(t, tx)

	support := testutil.SeedUser(t, ctx, tx, "run-support@example.com", types.RoleSupport)
	doc := testutil.SeedDocument(t, ctx, tx, support.ID, "s.txt", "x")

	_, err := svc.Run(userCtx(support), RunInput{
		Scope:    ScopePayload{Type: "files", IDs: []string{doc.ID.String()}},
		Messages: []Message{{Role: "user", Content: "go"}},
		Actions:  []string{"make_csv"},
	})
	if err == nil {
		t.Fatalf("expected forbidden for support role")
	}
}
