package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/repos/testutil"
	"github.com/docvault/docvault-backend/internal/types"
)

func TestUsageRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUsageRepo(db, testutil.Logger(t))
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, tx, "usage-alice@example.com", types.RoleUser)
	bob := testutil.SeedUser(t, ctx, tx, "usage-bob@example.com", types.RoleUser)

	now := time.Now().UTC()
	records := []*types.UsageRecord{
		{ID: uuid.New(), UserID: alice.ID, Action: types.ActionMakeDocument, CreditsUsed: 5, CreatedAt: now},
		{ID: uuid.New(), UserID: alice.ID, Action: types.ActionMakeCSV, CreditsUsed: 5, CreatedAt: now},
		{ID: uuid.New(), UserID: bob.ID, Action: types.ActionMakeDocument, CreditsUsed: 5, CreatedAt: now},
	}
	if _, err := repo.Create(ctx, tx, records); err != nil {
		t.Fatalf("Create: %v", err)
	}

	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	totals, err := repo.SumCreditsByUser(ctx, tx, start, end, nil)
	if err != nil {
		t.Fatalf("SumCreditsByUser: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("SumCreditsByUser: expected 2 users, got %d", len(totals))
	}
	// Ordered by total desc: alice (10) before bob (5).
	if totals[0].UserID != alice.ID || totals[0].TotalCreditsUsed != 10 {
		t.Fatalf("SumCreditsByUser: unexpected first row: %+v", totals[0])
	}
	if totals[1].UserID != bob.ID || totals[1].TotalCreditsUsed != 5 {
		t.Fatalf("SumCreditsByUser: unexpected second row: %+v", totals[1])
	}

	scoped, err := repo.SumCreditsByUser(ctx, tx, start, end, &bob.ID)
	if err != nil {
		t.Fatalf("SumCreditsByUser (scoped): %v", err)
	}
	if len(scoped) != 1 || scoped[0].UserID != bob.ID {
		t.Fatalf("SumCreditsByUser (scoped): unexpected result: %+v", scoped)
	}

	window, err := repo.ListInWindow(ctx, tx, start, end, &alice.ID)
	if err != nil {
		t.Fatalf("ListInWindow: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("ListInWindow: expected 2 records, got %d", len(window))
	}

	count, err := repo.CountSince(ctx, tx, start)
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 3 {
		t.Fatalf("CountSince: expected 3, got %d", count)
	}
}
