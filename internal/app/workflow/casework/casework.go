// Package casework implements case creation, partial updates with an
// update log, note appends and case reads. Access is decided by casepolicy;
// persistence goes through the case store's version compare-and-swap.
package casework

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/policy/casepolicy"
	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CaseStore is the persistence the workflow needs.
type CaseStore interface {
	NextCaseID(ctx context.Context, year int) (string, error)
	Create(ctx context.Context, c models.Case) (models.Case, error)
	GetByCaseID(ctx context.Context, caseID string) (*models.Case, error)
	ReplaceIfVersion(ctx context.Context, c *models.Case, expected int64) error
	AppendNote(ctx context.Context, caseID string, n models.Note) ([]models.Note, error)
	Delete(ctx context.Context, caseID string) (int64, error)
	List(ctx context.Context, f casestore.Filter, sort bson.D, skip, limit int64) ([]models.Case, error)
	Count(ctx context.Context, f casestore.Filter) (int64, error)
	StatusCounts(ctx context.Context, f casestore.Filter) (casestore.StatusCounts, error)
	CountBy(ctx context.Context, f casestore.Filter, field string) ([]casestore.Bucket, error)
}

// UserLookup resolves officer and author references.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

type Service struct {
	cases CaseStore
	users UserLookup
	audit *auditlog.Logger
	log   *zap.Logger
	now   func() time.Time
}

// New wires a Service. audit may be nil.
func New(cases CaseStore, users UserLookup, audit *auditlog.Logger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cases: cases,
		users: users,
		audit: audit,
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// load fetches a case and checks that actor may work on it.
func (s *Service) load(ctx context.Context, actor casepolicy.Actor, caseID string) (*models.Case, error) {
	c, err := s.cases.GetByCaseID(ctx, normalize.CaseID(caseID))
	if errors.Is(err, casestore.ErrNotFound) {
		return nil, apierr.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if !casepolicy.CanAccess(actor, c) {
		return nil, apierr.ErrAccessDenied
	}
	return c, nil
}

// officer loads id and requires an active police account. field names the
// input in the validation error.
func (s *Service) officer(ctx context.Context, field string, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, apierr.Invalid(field, "Assigned officer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load officer: %w", err)
	}
	if u.Role != models.RolePolice {
		return nil, apierr.Invalid(field, "Assigned officer must be a police user")
	}
	if u.Status != models.StatusActive {
		return nil, apierr.Invalid(field, "Assigned officer is not active")
	}
	return u, nil
}

// Create stores a new case. Police creators default to assigning
// themselves; admins must name an officer.
func (s *Service) Create(ctx context.Context, actor casepolicy.Actor, in CreateInput) (*CaseView, error) {
	now := s.now()
	c, v := in.toCase()

	officerID := actor.ID
	if strings.TrimSpace(in.AssignedOfficer) != "" {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.AssignedOfficer))
		if err != nil {
			v.Add("assignedOfficer", "Assigned officer must be a valid id")
		}
		officerID = id
	} else if actor.IsAdmin() {
		v.Add("assignedOfficer", "Assigned officer is required")
	}

	c.Status = models.CaseStatusPending
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if c.ReportedDate.IsZero() {
		c.ReportedDate = now
	}
	prepare(&c)
	validate(&c, now, &v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	off, err := s.officer(ctx, "assignedOfficer", officerID)
	if err != nil {
		return nil, err
	}
	c.AssignedOfficer = off.ID
	c.AssignedOfficerName = off.FullName
	c.Department = off.Department

	for i := range c.Evidence {
		if c.Evidence[i].UploadedBy == nil {
			by := actor.ID
			at := now
			c.Evidence[i].UploadedBy = &by
			c.Evidence[i].UploadedAt = &at
		}
	}

	c.CaseID, err = s.cases.NextCaseID(ctx, now.Year())
	if err != nil {
		return nil, fmt.Errorf("next case id: %w", err)
	}
	c.CreatedBy = actor.ID
	c.CreatedAt = now
	c.UpdatedAt = now

	created, err := s.cases.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	s.audit.CaseEvent(ctx, audit.EventCaseCreated, actor.ID, created.CaseID, true)
	s.log.Info("case created",
		zap.String("case_id", created.CaseID),
		zap.String("officer_id", created.AssignedOfficer.Hex()))

	return s.populate(ctx, actor, &created)
}

// Get returns the populated case with notes filtered for actor.
func (s *Service) Get(ctx context.Context, actor casepolicy.Actor, caseID string) (*CaseView, error) {
	c, err := s.load(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, actor, c)
}

// AddNote appends a note atomically and returns the notes actor may see.
func (s *Service) AddNote(ctx context.Context, actor casepolicy.Actor, caseID, content string, isPrivate bool) ([]models.Note, error) {
	content = htmlsanitize.PlainText(content)
	switch {
	case content == "":
		return nil, apierr.Invalid("content", "Note content is required")
	case len([]rune(content)) > models.MaxNoteLength:
		return nil, apierr.Invalid("content", fmt.Sprintf("Note cannot exceed %d characters", models.MaxNoteLength))
	}

	c, err := s.load(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}

	n := models.Note{
		ID:        uuid.NewString(),
		Content:   content,
		AddedBy:   actor.ID,
		AddedAt:   s.now(),
		IsPrivate: isPrivate,
	}
	notes, err := s.cases.AppendNote(ctx, c.CaseID, n)
	if errors.Is(err, casestore.ErrNotFound) {
		return nil, apierr.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("append note: %w", err)
	}
	return casepolicy.VisibleNotes(actor, notes), nil
}

// Delete removes a case. It needs the cases_delete capability.
func (s *Service) Delete(ctx context.Context, actor casepolicy.Actor, caseID string) error {
	if !casepolicy.CanDelete(actor) {
		return apierr.ErrPermissionDenied
	}
	caseID = normalize.CaseID(caseID)
	n, err := s.cases.Delete(ctx, caseID)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if n == 0 {
		return apierr.ErrCaseNotFound
	}
	s.audit.CaseEvent(ctx, audit.EventCaseDeleted, actor.ID, caseID, true)
	s.log.Info("case deleted", zap.String("case_id", caseID), zap.String("actor_id", actor.ID.Hex()))
	return nil
}
