package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/repos/testutil"
	"github.com/docvault/docvault-backend/internal/types"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Email:    "userrepo@example.com",
			Password: "pw",
			Role:     types.RoleUser,
			Credits:  types.DefaultUserCredits,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(ctx, tx, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}
}

func TestUserRepoDebitCredits(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "debit@example.com", types.RoleUser)

	if err := repo.DebitCredits(ctx, tx, u.ID, 5); err != nil {
		t.Fatalf("DebitCredits: %v", err)
	}

	got, err := repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs after debit: err=%v len=%d", err, len(got))
	}
	if got[0].Credits != types.DefaultUserCredits-5 {
		t.Fatalf("Credits: expected %d, got %d", types.DefaultUserCredits-5, got[0].Credits)
	}

	// No balance floor: repeated debits are allowed to drive the balance
	// negative.
	for i := 0; i < 25; i++ {
		if err := repo.DebitCredits(ctx, tx, u.ID, 5); err != nil {
			t.Fatalf("DebitCredits loop: %v", err)
		}
	}
	got, err = repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs after loop: err=%v len=%d", err, len(got))
	}
	if got[0].Credits >= 0 {
		t.Fatalf("Credits: expected negative balance, got %d", got[0].Credits)
	}
}
