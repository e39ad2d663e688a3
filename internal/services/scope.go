package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/types"
)

const (
	ScopeTypeFolder = "folder"
	ScopeTypeFiles  = "files"
)

// generatedTagName is the folder that receives artifacts when a run is
// scoped to loose files rather than a folder.
const generatedTagName = "generated"

// ScopePayload is the wire shape of a run scope. Folder scopes carry Name,
// files scopes carry IDs; the other field must stay empty.
type ScopePayload struct {
	Type string   `json:"type"`
	Name string   `json:"name,omitempty"`
	IDs  []string `json:"ids,omitempty"`
}

// ScopeResolver turns a scope payload into the documents it names plus the
// tag that generated artifacts will be filed under.
type ScopeResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID, scope ScopePayload) ([]*types.Document, *types.Tag, error)
}

type scopeResolver struct {
	tagRepo         repos.TagRepo
	documentRepo    repos.DocumentRepo
	documentTagRepo repos.DocumentTagRepo
	log             *logger.Logger
}

func NewScopeResolver(
	tagRepo repos.TagRepo,
	documentRepo repos.DocumentRepo,
	documentTagRepo repos.DocumentTagRepo,
	baseLog *logger.Logger,
) ScopeResolver {
	return &scopeResolver{
		tagRepo:         tagRepo,
		documentRepo:    documentRepo,
		documentTagRepo: documentTagRepo,
		log:             baseLog.With("service", "ScopeResolver"),
	}
}

// ValidateScope checks the structural shape of a scope payload before any
// store access. Cross-field exclusivity is part of the shape: a folder scope
// with ids, or a files scope with a name, is rejected outright.
func ValidateScope(scope ScopePayload) error {
	switch scope.Type {
	case ScopeTypeFolder:
		if strings.TrimSpace(scope.Name) == "" {
			return apierr.Validation("scope.name is required for folder scope")
		}
		if len(scope.IDs) > 0 {
			return apierr.Validation("scope.ids is not allowed for folder scope")
		}
	case ScopeTypeFiles:
		if len(scope.IDs) == 0 {
			return apierr.Validation("scope.ids is required for files scope")
		}
		if strings.TrimSpace(scope.Name) != "" {
			return apierr.Validation("scope.name is not allowed for files scope")
		}
		var malformed []string
		for _, raw := range scope.IDs {
			if _, err := uuid.Parse(raw); err != nil {
				malformed = append(malformed, raw)
			}
		}
		if len(malformed) > 0 {
			return apierr.Validation("scope.ids contains invalid ids: %s", strings.Join(malformed, ", "))
		}
	default:
		return apierr.Validation("scope.type must be 'folder' or 'files'")
	}
	return nil
}

func (sr *scopeResolver) Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID, scope ScopePayload) ([]*types.Document, *types.Tag, error) {
	switch scope.Type {
	case ScopeTypeFolder:
		return sr.resolveFolder(ctx, tx, userID, scope.Name)
	case ScopeTypeFiles:
		return sr.resolveFiles(ctx, tx, userID, scope.IDs)
	}
	return nil, nil, apierr.Validation("scope.type must be 'folder' or 'files'")
}

func (sr *scopeResolver) resolveFolder(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) ([]*types.Document, *types.Tag, error) {
	tags, err := sr.tagRepo.GetByOwnerAndName(ctx, tx, userID, name)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) == 0 {
		return nil, nil, apierr.NotFound("folder not found: %s", name)
	}
	tag := tags[0]

	links, err := sr.documentTagRepo.GetPrimaryByTagIDs(ctx, tx, []uuid.UUID{tag.ID})
	if err != nil {
		return nil, nil, err
	}
	docIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		docIDs = append(docIDs, link.DocumentID)
	}

	if len(docIDs) == 0 {
		return nil, nil, apierr.NotFound("folder %s has no documents", name)
	}

	docs, err := sr.documentRepo.GetByIDsForOwner(ctx, tx, userID, docIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, apierr.NotFound("folder %s has no documents", name)
	}

	return docs, tag, nil
}

func (sr *scopeResolver) resolveFiles(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rawIDs []string) ([]*types.Document, *types.Tag, error) {
	docIDs := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, apierr.Validation("scope.ids contains an invalid id: %s", raw)
		}
		docIDs = append(docIDs, id)
	}

	// Ownership filtering happens in the query itself: documents the caller
	// does not own simply do not come back. Any shortfall fails the whole
	// request, partial results are never returned.
	docs, err := sr.documentRepo.GetByIDsForOwner(ctx, tx, userID, docIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) != len(docIDs) {
		return nil, nil, apierr.NotFound("one or more documents were not found")
	}

	tag, err := sr.findOrCreateGeneratedTag(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	return docs, tag, nil
}

func (sr *scopeResolver) findOrCreateGeneratedTag(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Tag, error) {
	tags, err := sr.tagRepo.GetByOwnerAndName(ctx, tx, userID, generatedTagName)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		return tags[0], nil
	}

	created, err := sr.tagRepo.Create(ctx, tx, []*types.Tag{{
		ID:      uuid.New(),
		OwnerID: userID,
		Name:    generatedTagName,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}
