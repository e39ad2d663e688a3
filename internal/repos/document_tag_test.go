package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/repos/testutil"
	"github.com/docvault/docvault-backend/internal/types"
)

func TestDocumentTagRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewDocumentTagRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "doctagrepo@example.com", types.RoleUser)
	invoices := testutil.SeedTag(t, ctx, tx, owner.ID, "invoices")
	archive := testutil.SeedTag(t, ctx, tx, owner.ID, "archive")

	docA := testutil.SeedDocument(t, ctx, tx, owner.ID, "a.txt", "alpha")
	docB := testutil.SeedDocument(t, ctx, tx, owner.ID, "b.txt", "beta")

	testutil.SeedDocumentTag(t, ctx, tx, docA.ID, invoices.ID, true)
	testutil.SeedDocumentTag(t, ctx, tx, docA.ID, archive.ID, false)
	testutil.SeedDocumentTag(t, ctx, tx, docB.ID, invoices.ID, true)

	primary, err := repo.GetPrimaryByTagIDs(ctx, tx, []uuid.UUID{invoices.ID})
	if err != nil {
		t.Fatalf("GetPrimaryByTagIDs: %v", err)
	}
	if len(primary) != 2 {
		t.Fatalf("GetPrimaryByTagIDs: expected 2 primary links, got %d", len(primary))
	}

	// The secondary archive link must not surface as a folder membership.
	primary, err = repo.GetPrimaryByTagIDs(ctx, tx, []uuid.UUID{archive.ID})
	if err != nil {
		t.Fatalf("GetPrimaryByTagIDs (archive): %v", err)
	}
	if len(primary) != 0 {
		t.Fatalf("GetPrimaryByTagIDs (archive): expected 0, got %d", len(primary))
	}

	folders, err := repo.ListFolders(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("ListFolders: expected 1 folder, got %d", len(folders))
	}
	if folders[0].Name != "invoices" || folders[0].Count != 2 {
		t.Fatalf("ListFolders: unexpected folder: %+v", folders[0])
	}

	docs, err := repo.ListFolderDocuments(ctx, tx, owner.ID, invoices.ID)
	if err != nil {
		t.Fatalf("ListFolderDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListFolderDocuments: expected 2, got %d", len(docs))
	}
	for _, d := range docs {
		if d.TagName != "invoices" {
			t.Fatalf("ListFolderDocuments: unexpected tag name %q", d.TagName)
		}
	}
}
