package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/requestdata"
	"github.com/docvault/docvault-backend/internal/types"
)

// UploadInput describes one uploaded file plus its tag links. PrimaryTagID
// is required; SecondaryTagIDs are optional extra associations.
type UploadInput struct {
	Filename        string
	Mime            string
	Content         []byte
	PrimaryTagID    uuid.UUID
	SecondaryTagIDs []uuid.UUID
}

type DocService interface {
	Upload(ctx context.Context, input UploadInput) (*types.Document, error)
	ListFolders(ctx context.Context) ([]repos.FolderSummary, error)
	ListFolderDocuments(ctx context.Context, tagName string) ([]repos.FolderDocument, error)
	Search(ctx context.Context, query string) ([]*types.Document, error)
}

type docService struct {
	db           *gorm.DB
	fileStore    FileStore
	audit        AuditRecorder
	tagRepo      repos.TagRepo
	documentRepo repos.DocumentRepo
	docTagRepo   repos.DocumentTagRepo
	log          *logger.Logger
}

func NewDocService(
	db *gorm.DB,
	fileStore FileStore,
	audit AuditRecorder,
	tagRepo repos.TagRepo,
	documentRepo repos.DocumentRepo,
	docTagRepo repos.DocumentTagRepo,
	baseLog *logger.Logger,
) DocService {
	return &docService{
		db:           db,
		fileStore:    fileStore,
		audit:        audit,
		tagRepo:      tagRepo,
		documentRepo: documentRepo,
		docTagRepo:   docTagRepo,
		log:          baseLog.With("service", "DocService"),
	}
}

func (ds *docService) Upload(ctx context.Context, input UploadInput) (*types.Document, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}
	if input.Filename == "" || len(input.Content) == 0 {
		return nil, apierr.Validation("file is required")
	}
	if input.PrimaryTagID == uuid.Nil {
		return nil, apierr.Validation("primary tag is required")
	}

	allTagIDs := append([]uuid.UUID{input.PrimaryTagID}, input.SecondaryTagIDs...)
	owned, err := ds.tagRepo.CountByOwnerAndIDs(ctx, nil, rd.UserID, allTagIDs)
	if err != nil {
		return nil, err
	}
	if owned != int64(len(allTagIDs)) {
		return nil, apierr.NotFound("one or more tags were not found")
	}

	// File bytes are keyed by primary tag id; the row follows in one tx.
	if _, err := ds.fileStore.Save(input.PrimaryTagID, input.Filename, input.Content); err != nil {
		return nil, err
	}

	doc := &types.Document{
		ID:          uuid.New(),
		OwnerID:     rd.UserID,
		Filename:    input.Filename,
		Mime:        input.Mime,
		TextContent: string(input.Content),
	}

	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ds.documentRepo.Create(ctx, tx, []*types.Document{doc}); err != nil {
			return err
		}

		links := []*types.DocumentTag{{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			TagID:      input.PrimaryTagID,
			IsPrimary:  true,
		}}
		for _, tagID := range input.SecondaryTagIDs {
			links = append(links, &types.DocumentTag{
				ID:         uuid.New(),
				DocumentID: doc.ID,
				TagID:      tagID,
				IsPrimary:  false,
			})
		}
		if _, err := ds.docTagRepo.Create(ctx, tx, links); err != nil {
			return err
		}

		docID := doc.ID
		_, err := ds.audit.Record(ctx, tx, []AuditEntry{{
			UserID:     rd.UserID,
			Action:     types.AuditActionUploadDoc,
			EntityType: types.AuditEntityDocument,
			EntityID:   &docID,
			Metadata: map[string]interface{}{
				"via":  "docs.upload",
				"mime": input.Mime,
			},
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	ds.log.Info("document uploaded", "user_id", rd.UserID, "document_id", doc.ID)
	return doc, nil
}

func (ds *docService) ListFolders(ctx context.Context) ([]repos.FolderSummary, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}
	return ds.docTagRepo.ListFolders(ctx, nil, rd.UserID)
}

func (ds *docService) ListFolderDocuments(ctx context.Context, tagName string) ([]repos.FolderDocument, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}

	tags, err := ds.tagRepo.GetByOwnerAndName(ctx, nil, rd.UserID, tagName)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, apierr.NotFound("folder not found: %s", tagName)
	}

	return ds.docTagRepo.ListFolderDocuments(ctx, nil, rd.UserID, tags[0].ID)
}

func (ds *docService) Search(ctx context.Context, query string) ([]*types.Document, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}
	if query == "" {
		return nil, apierr.Validation("q is required")
	}
	return ds.documentRepo.SearchByText(ctx, nil, rd.UserID, query)
}
