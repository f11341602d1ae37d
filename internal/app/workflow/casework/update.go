package casework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/policy/casepolicy"
	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReasonKey carries the optional update reason inside an update body.
const ReasonKey = "updateReason"

// field is one updatable case attribute.
type field struct {
	name string
	get  func(c *models.Case) any
	set  func(c *models.Case, raw json.RawMessage) error
}

// replace decodes raw into a fresh T and stores it, so objects and lists
// are replaced whole rather than merged.
func replace[T any](name string, ptr func(c *models.Case) *T) field {
	return field{
		name: name,
		get:  func(c *models.Case) any { return *ptr(c) },
		set: func(c *models.Case, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*ptr(c) = v
			return nil
		},
	}
}

// updatable lists the fields an update may touch, in the order changes are
// recorded.
var updatable = []field{
	replace("title", func(c *models.Case) *string { return &c.Title }),
	replace("type", func(c *models.Case) *string { return &c.Type }),
	replace("subType", func(c *models.Case) *string { return &c.SubType }),
	replace("status", func(c *models.Case) *string { return &c.Status }),
	replace("priority", func(c *models.Case) *string { return &c.Priority }),
	{
		name: "incidentDate",
		get:  func(c *models.Case) any { return c.IncidentDate },
		set: func(c *models.Case, raw json.RawMessage) error {
			var d DateInput
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			if d.IsZero() {
				return errors.New("incident date is required")
			}
			c.IncidentDate = d.UTC()
			return nil
		},
	},
	{
		name: "reportedDate",
		get:  func(c *models.Case) any { return c.ReportedDate },
		set: func(c *models.Case, raw json.RawMessage) error {
			var d DateInput
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			if d.IsZero() {
				return errors.New("reported date is required")
			}
			c.ReportedDate = d.UTC()
			return nil
		},
	},
	{
		name: "location",
		get:  func(c *models.Case) any { return c.Location },
		set: func(c *models.Case, raw json.RawMessage) error {
			var l LocationInput
			if err := json.Unmarshal(raw, &l); err != nil {
				return err
			}
			c.Location = l.Location
			return nil
		},
	},
	replace("description", func(c *models.Case) *string { return &c.Description }),
	replace("complainant", func(c *models.Case) *models.Complainant { return &c.Complainant }),
	{
		name: "assignedOfficer",
		get:  func(c *models.Case) any { return c.AssignedOfficer },
		set: func(c *models.Case, raw json.RawMessage) error {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.AssignedOfficer = id
			return nil
		},
	},
	replace("suspects", func(c *models.Case) *[]models.Suspect { return &c.Suspects }),
	replace("witnesses", func(c *models.Case) *[]models.Witness { return &c.Witnesses }),
	replace("evidence", func(c *models.Case) *[]models.Evidence { return &c.Evidence }),
	replace("relatedCases", func(c *models.Case) *[]string { return &c.RelatedCases }),
	replace("tags", func(c *models.Case) *[]string { return &c.Tags }),
	{
		name: "closedDate",
		get:  func(c *models.Case) any { return c.ClosedDate },
		set: func(c *models.Case, raw json.RawMessage) error {
			if string(raw) == "null" {
				c.ClosedDate = nil
				return nil
			}
			var d DateInput
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			t := d.UTC()
			c.ClosedDate = &t
			return nil
		},
	},
	replace("closureReason", func(c *models.Case) *string { return &c.ClosureReason }),
}

// immutable keys are rejected with a specific message.
var immutable = map[string]bool{
	"id": true, "_id": true, "caseId": true,
	"assignedOfficerName": true, "department": true,
	"notes": true, "updateLog": true, "closedBy": true,
	"createdBy": true, "createdAt": true, "updatedAt": true, "version": true,
}

var updatableByName = func() map[string]bool {
	m := make(map[string]bool, len(updatable))
	for _, f := range updatable {
		m[f.name] = true
	}
	return m
}()

// canonical renders a field value for the update log. Strings are kept
// as-is, times use RFC 3339, everything else is its JSON encoding.
func canonical(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return x.Hex()
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.Len() == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Update applies a partial update to a case. Keys absent from patch are
// left alone; keys whose value did not change are not logged. A non-empty
// diff appends one update log entry. The write is a compare-and-swap on the
// version that was read; losing the race returns apierr.ErrConflict.
func (s *Service) Update(ctx context.Context, actor casepolicy.Actor, caseID string, patch map[string]json.RawMessage) (*CaseView, error) {
	cur, err := s.load(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	var v apierr.ValidationError
	var reason string
	if raw, ok := patch[ReasonKey]; ok {
		if err := json.Unmarshal(raw, &reason); err != nil {
			v.Add(ReasonKey, "Update reason must be text")
		}
		reason = htmlsanitize.PlainText(reason)
		if len([]rune(reason)) > models.MaxReasonLength {
			v.Add(ReasonKey, fmt.Sprintf("Update reason cannot exceed %d characters", models.MaxReasonLength))
		}
	}
	for key := range patch {
		switch {
		case key == ReasonKey || updatableByName[key]:
		case immutable[key]:
			v.Add(key, "Field cannot be changed")
		default:
			v.Add(key, "Unknown field")
		}
	}

	next := cur.Clone()
	provided := make([]field, 0, len(patch))
	for _, f := range updatable {
		raw, ok := patch[f.name]
		if !ok {
			continue
		}
		if err := f.set(next, raw); err != nil {
			v.Add(f.name, "Invalid value")
			continue
		}
		provided = append(provided, f)
	}
	prepare(next)
	validate(next, now, &v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if next.AssignedOfficer != cur.AssignedOfficer {
		off, err := s.officer(ctx, "assignedOfficer", next.AssignedOfficer)
		if err != nil {
			return nil, err
		}
		next.AssignedOfficerName = off.FullName
		next.Department = off.Department
	}

	if models.IsTerminalStatus(next.Status) && !models.IsTerminalStatus(cur.Status) {
		if next.ClosedDate == nil {
			t := now
			next.ClosedDate = &t
		}
		by := actor.ID
		next.ClosedBy = &by
	}

	var changes []models.FieldChange
	for _, f := range provided {
		from, to := canonical(f.get(cur)), canonical(f.get(next))
		if from != to {
			changes = append(changes, models.FieldChange{Field: f.name, From: from, To: to})
		}
	}

	next.UpdatedAt = now
	if len(changes) > 0 {
		next.UpdateLog = append(next.UpdateLog, models.UpdateLogEntry{
			UpdatedBy: actor.ID,
			UpdatedAt: now,
			Changes:   changes,
			Reason:    reason,
		})
	}

	err = s.cases.ReplaceIfVersion(ctx, next, cur.Version)
	switch {
	case errors.Is(err, casestore.ErrVersionConflict):
		s.audit.CaseEvent(ctx, audit.EventCaseConflict, actor.ID, cur.CaseID, false)
		s.log.Info("case update lost version race",
			zap.String("case_id", cur.CaseID),
			zap.Int64("expected_version", cur.Version))
		return nil, apierr.ErrConflict
	case errors.Is(err, casestore.ErrNotFound):
		return nil, apierr.ErrCaseNotFound
	case err != nil:
		return nil, fmt.Errorf("replace case: %w", err)
	}

	return s.populate(ctx, actor, next)
}
