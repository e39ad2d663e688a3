package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/requestdata"
	"github.com/docvault/docvault-backend/internal/types"
)

const creditsPerRun = 5

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RunInput struct {
	Scope    ScopePayload `json:"scope"`
	Messages []Message    `json:"messages"`
	Actions  []string     `json:"actions"`
}

type CreatedArtifact struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Mime     string    `json:"mime"`
}

type RunResult struct {
	Created        []CreatedArtifact `json:"created"`
	CreditsCharged int               `json:"credits_charged"`
	Warnings       []string          `json:"warnings"`
}

type ActionBreakdownEntry struct {
	Action      string    `json:"action"`
	CreditsUsed int       `json:"creditsUsed"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserMonthlyUsage struct {
	UserID           uuid.UUID              `json:"userId"`
	Email            string                 `json:"email"`
	Role             string                 `json:"role"`
	TotalCreditsUsed int64                  `json:"totalCreditsUsed"`
	ActionsBreakdown []ActionBreakdownEntry `json:"actionsBreakdown"`
}

type MonthlyUsageResult struct {
	Month      string             `json:"month"`
	TotalUsers int                `json:"totalUsers"`
	Usage      []UserMonthlyUsage `json:"usage"`
}

type ScopedActionService interface {
	Run(ctx context.Context, input RunInput) (*RunResult, error)
	MonthlyUsage(ctx context.Context) (*MonthlyUsageResult, error)
}

type scopedActionService struct {
	db            *gorm.DB
	scopeResolver ScopeResolver
	fileStore     FileStore
	audit         AuditRecorder
	documentRepo  repos.DocumentRepo
	docTagRepo    repos.DocumentTagRepo
	userRepo      repos.UserRepo
	usageRepo     repos.UsageRepo
	log           *logger.Logger
}

func NewScopedActionService(
	db *gorm.DB,
	scopeResolver ScopeResolver,
	fileStore FileStore,
	audit AuditRecorder,
	documentRepo repos.DocumentRepo,
	docTagRepo repos.DocumentTagRepo,
	userRepo repos.UserRepo,
	usageRepo repos.UsageRepo,
	baseLog *logger.Logger,
) ScopedActionService {
	return &scopedActionService{
		db:            db,
		scopeResolver: scopeResolver,
		fileStore:     fileStore,
		audit:         audit,
		documentRepo:  documentRepo,
		docTagRepo:    docTagRepo,
		userRepo:      userRepo,
		usageRepo:     usageRepo,
		log:           baseLog.With("service", "ScopedActionService"),
	}
}

func validActionSet(actions []string) bool {
	if len(actions) == 0 {
		return false
	}
	for _, a := range actions {
		if a != types.ActionMakeDocument && a != types.ActionMakeCSV {
			return false
		}
	}
	return true
}

func validateRunInput(input RunInput) error {
	if err := ValidateScope(input.Scope); err != nil {
		return err
	}
	if !validActionSet(input.Actions) {
		return apierr.Validation("actions must be a non-empty list drawn from make_document, make_csv")
	}

	hasUserMessage := false
	for _, m := range input.Messages {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return apierr.Validation("messages must contain at least one user entry")
	}

	return nil
}

// artifactFilename embeds the action kind and timestamp, with colons and
// periods replaced so the name is filesystem-safe.
func artifactFilename(kind string, at time.Time) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, ".", "-")
	return fmt.Sprintf("action_%s_%s", kind, stamp)
}

// Run executes the scoped action pipeline: resolve, build, synthesize,
// persist artifacts, meter, audit. Steps run strictly in order and later
// steps never run after a failure, but side effects of completed steps are
// not rolled back: an artifact written before a metering failure stays
// written. Each individual multi-entity write is atomic within its own
// transaction.
func (sas *scopedActionService) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}
	if rd.Role != types.RoleUser && rd.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("role %s may not run scoped actions", rd.Role)
	}

	if err := validateRunInput(input); err != nil {
		return nil, err
	}

	docs, targetTag, err := sas.scopeResolver.Resolve(ctx, nil, rd.UserID, input.Scope)
	if err != nil {
		return nil, err
	}

	contexts := BuildDocumentContext(docs)
	synthesis := Synthesize(input.Actions, contexts)

	now := time.Now()
	created := make([]CreatedArtifact, 0, 2)

	if synthesis.SummaryText != "" {
		artifact, err := sas.writeArtifact(ctx, rd.UserID, targetTag.ID,
			artifactFilename("summary", now)+".txt", "text/plain", synthesis.SummaryText)
		if err != nil {
			return nil, err
		}
		created = append(created, *artifact)
	}

	if synthesis.CSVText != "" {
		artifact, err := sas.writeArtifact(ctx, rd.UserID, targetTag.ID,
			artifactFilename("table", now)+".csv", "text/csv", synthesis.CSVText)
		if err != nil {
			return nil, err
		}
		created = append(created, *artifact)
	}

	if err := sas.meterRun(ctx, rd.UserID, input.Actions[0]); err != nil {
		return nil, err
	}

	if err := sas.auditRun(ctx, rd.UserID, input.Scope, input.Actions, created); err != nil {
		return nil, err
	}

	sas.log.Info("scoped action completed",
		"user_id", rd.UserID,
		"scope_type", input.Scope.Type,
		"artifacts", len(created),
	)

	return &RunResult{
		Created:        created,
		CreditsCharged: creditsPerRun,
		Warnings:       []string{},
	}, nil
}

// writeArtifact persists one generated artifact: file bytes first, then the
// document row and its primary tag link in a single transaction so a crash
// can never leave a document without a folder.
func (sas *scopedActionService) writeArtifact(ctx context.Context, userID, tagID uuid.UUID, filename, mime, body string) (*CreatedArtifact, error) {
	if _, err := sas.fileStore.Save(tagID, filename, []byte(body)); err != nil {
		return nil, err
	}

	doc := &types.Document{
		ID:          uuid.New(),
		OwnerID:     userID,
		Filename:    filename,
		Mime:        mime,
		TextContent: body,
	}

	err := sas.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := sas.documentRepo.Create(ctx, tx, []*types.Document{doc}); err != nil {
			return err
		}
		_, err := sas.docTagRepo.Create(ctx, tx, []*types.DocumentTag{{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			TagID:      tagID,
			IsPrimary:  true,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &CreatedArtifact{ID: doc.ID, Filename: filename, Mime: mime}, nil
}

// meterRun charges the flat per-run fee: one ledger row plus an atomic
// unconditional decrement of the balance. The balance has no floor and may
// go negative.
func (sas *scopedActionService) meterRun(ctx context.Context, userID uuid.UUID, action string) error {
	return sas.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := sas.usageRepo.Create(ctx, tx, []*types.UsageRecord{{
			ID:          uuid.New(),
			UserID:      userID,
			Action:      action,
			CreditsUsed: creditsPerRun,
		}}); err != nil {
			return err
		}
		return sas.userRepo.DebitCredits(ctx, tx, userID, creditsPerRun)
	})
}

func (sas *scopedActionService) auditRun(ctx context.Context, userID uuid.UUID, scope ScopePayload, actions []string, created []CreatedArtifact) error {
	runID := uuid.New()
	createdIDs := make([]string, 0, len(created))
	for _, artifact := range created {
		createdIDs = append(createdIDs, artifact.ID.String())
	}

	entries := []AuditEntry{{
		UserID:     userID,
		Action:     types.AuditActionScopedAction,
		EntityType: types.AuditEntityScoped,
		EntityID:   &runID,
		Metadata: map[string]interface{}{
			"scope":         scope,
			"actions":       actions,
			"createdDocIds": createdIDs,
		},
	}}

	for _, artifact := range created {
		docID := artifact.ID
		entries = append(entries, AuditEntry{
			UserID:     userID,
			Action:     types.AuditActionUploadDoc,
			EntityType: types.AuditEntityDocument,
			EntityID:   &docID,
			Metadata: map[string]interface{}{
				"via":   "actions.run",
				"mime":  artifact.Mime,
				"scope": scope.Type,
			},
		})
	}

	_, err := sas.audit.Record(ctx, nil, entries)
	return err
}

// MonthlyUsage rolls up the current calendar month. Admins see every user;
// everyone else sees only themselves.
func (sas *scopedActionService) MonthlyUsage(ctx context.Context) (*MonthlyUsageResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("missing identity")
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	var onlyUser *uuid.UUID
	if rd.Role != types.RoleAdmin {
		onlyUser = &rd.UserID
	}

	totals, err := sas.usageRepo.SumCreditsByUser(ctx, nil, start, end, onlyUser)
	if err != nil {
		return nil, err
	}

	records, err := sas.usageRepo.ListInWindow(ctx, nil, start, end, onlyUser)
	if err != nil {
		return nil, err
	}

	breakdowns := make(map[uuid.UUID][]ActionBreakdownEntry, len(totals))
	for _, record := range records {
		breakdowns[record.UserID] = append(breakdowns[record.UserID], ActionBreakdownEntry{
			Action:      record.Action,
			CreditsUsed: record.CreditsUsed,
			CreatedAt:   record.CreatedAt,
		})
	}

	usage := make([]UserMonthlyUsage, 0, len(totals))
	for _, total := range totals {
		usage = append(usage, UserMonthlyUsage{
			UserID:           total.UserID,
			Email:            total.Email,
			Role:             total.Role,
			TotalCreditsUsed: total.TotalCreditsUsed,
			ActionsBreakdown: breakdowns[total.UserID],
		})
	}

	return &MonthlyUsageResult{
		Month:      now.Format("January 2006"),
		TotalUsers: len(usage),
		Usage:      usage,
	}, nil
}
