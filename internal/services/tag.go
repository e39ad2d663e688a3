package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/normalization"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/requestdata"
	"github.com/docvault/docvault-backend/internal/types"
)

type TagService interface {
	Create(ctx context.Context, name string, isPrimary bool) (*types.Tag, error)
	List(ctx context.Context) ([]*types.Tag, error)
	UpdateName(ctx context.Context, tagID uuid.UUID, name string) (*types.Tag, error)
}

type tagService struct {
	db      *gorm.DB
	tagRepo repos.TagRepo
	log     *logger.Logger
}

func NewTagService(db *gorm.DB, tagRepo repos.TagRepo, baseLog *logger.Logger) TagService {
	return &tagService{
		db:      db,
		tagRepo: tagRepo,
		log:     baseLog.With("service", "TagService"),
	}
}

// Create does not enforce per-owner name uniqueness. Folder lookup takes the
// earliest-created match, so duplicate names shadow rather than collide.
func (ts *tagService) Create(ctx context.Context, name string, isPrimary bool) (*types.Tag, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}

	name = normalization.ParseInputString(name)
	if name == "" {
		return nil, apierr.Validation("tag name is required")
	}

	created, err := ts.tagRepo.Create(ctx, nil, []*types.Tag{{
		ID:        uuid.New(),
		OwnerID:   rd.UserID,
		Name:      name,
		IsPrimary: isPrimary,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (ts *tagService) List(ctx context.Context) ([]*types.Tag, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}
	return ts.tagRepo.ListByOwner(ctx, nil, rd.UserID)
}

func (ts *tagService) UpdateName(ctx context.Context, tagID uuid.UUID, name string) (*types.Tag, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("tag name is required")
	}

	tags, err := ts.tagRepo.GetByIDs(ctx, nil, []uuid.UUID{tagID})
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, apierr.NotFound("tag not found")
	}
	tag := tags[0]
	if tag.OwnerID != rd.UserID {
		return nil, apierr.Forbidden("tag belongs to another user")
	}

	if err := ts.tagRepo.UpdateName(ctx, nil, tagID, name); err != nil {
		return nil, err
	}
	tag.Name = name
	return tag, nil
}
