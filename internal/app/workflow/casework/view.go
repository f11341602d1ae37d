package casework

import (
	"context"
	"fmt"

	"github.com/dalemusser/crms/internal/app/policy/casepolicy"
	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/system/paging"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownUser is shown for references to accounts that no longer exist.
const UnknownUser = "Unknown user"

// CaseView is a case with user references resolved to display names.
type CaseView struct {
	*models.Case
	UserNames map[string]string `json:"userNames"`
}

// populate resolves every user id the case mentions and hides private
// notes actor may not read. c is not modified.
func (s *Service) populate(ctx context.Context, actor casepolicy.Actor, c *models.Case) (*CaseView, error) {
	out := c.Clone()
	out.Notes = casepolicy.VisibleNotes(actor, c.Notes)

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if id.IsZero() || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	add(out.AssignedOfficer)
	add(out.CreatedBy)
	if out.ClosedBy != nil {
		add(*out.ClosedBy)
	}
	for _, n := range out.Notes {
		add(n.AddedBy)
	}
	for _, e := range out.UpdateLog {
		add(e.UpdatedBy)
	}
	for _, e := range out.Evidence {
		if e.UploadedBy != nil {
			add(*e.UploadedBy)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		users, err := s.users.GetManyByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve users: %w", err)
		}
		for _, id := range ids {
			if u, ok := users[id]; ok {
				names[id.Hex()] = u.FullName
			} else {
				names[id.Hex()] = UnknownUser
			}
		}
	}
	return &CaseView{Case: out, UserNames: names}, nil
}

// ListResult is one page of cases.
type ListResult struct {
	Cases      []models.Case `json:"cases"`
	Pagination paging.Meta   `json:"pagination"`
}

// List returns a page of cases matching f. Police only see their own
// cases whatever f says; private notes are filtered per case.
func (s *Service) List(ctx context.Context, actor casepolicy.Actor, f casestore.Filter, page paging.Page, sort bson.D) (*ListResult, error) {
	if scope := casepolicy.Scope(actor); scope != nil {
		f.AssignedOfficer = scope
	}
	total, err := s.cases.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	cases, err := s.cases.List(ctx, f, sort, page.Skip(), int64(page.Limit))
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	for i := range cases {
		cases[i].Notes = casepolicy.VisibleNotes(actor, cases[i].Notes)
	}
	return &ListResult{Cases: cases, Pagination: paging.NewMeta(page, total)}, nil
}

// Stats is the per-caller case summary.
type Stats struct {
	casestore.StatusCounts
	ByType     []casestore.Bucket `json:"byType"`
	ByPriority []casestore.Bucket `json:"byPriority"`
}

// Stats counts the cases visible to actor by status, type and priority.
func (s *Service) Stats(ctx context.Context, actor casepolicy.Actor) (*Stats, error) {
	f := casestore.Filter{AssignedOfficer: casepolicy.Scope(actor)}
	counts, err := s.cases.StatusCounts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	byType, err := s.cases.CountBy(ctx, f, "type")
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	byPriority, err := s.cases.CountBy(ctx, f, "priority")
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}
	return &Stats{StatusCounts: counts, ByType: byType, ByPriority: byPriority}, nil
}
