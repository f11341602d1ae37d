package casework_test

import (
	"context"
	"fmt"
	"sync"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memCases keeps cases in memory with the same version semantics as the
// Mongo store.
type memCases struct {
	mu    sync.Mutex
	seq   map[int]int
	cases map[string]*models.Case

	// beforeReplace runs inside ReplaceIfVersion before the version check.
	beforeReplace func(c *models.Case)
}

func newMemCases() *memCases {
	return &memCases{seq: map[int]int{}, cases: map[string]*models.Case{}}
}

func (m *memCases) NextCaseID(_ context.Context, year int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[year]++
	return fmt.Sprintf("CASE%d%04d", year, m.seq[year]), nil
}

func (m *memCases) Create(_ context.Context, c models.Case) (models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[c.CaseID]; ok {
		return models.Case{}, casestore.ErrDuplicateCaseID
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Version = 1
	m.cases[c.CaseID] = c.Clone()
	return c, nil
}

func (m *memCases) put(c models.Case) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.CaseID] = c.Clone()
}

func (m *memCases) stored(caseID string) *models.Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cases[caseID].Clone()
}

func (m *memCases) GetByCaseID(_ context.Context, caseID string) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[caseID]
	if !ok {
		return nil, casestore.ErrNotFound
	}
	return c.Clone(), nil
}

func (m *memCases) ReplaceIfVersion(_ context.Context, c *models.Case, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.cases[c.CaseID]
	if !ok {
		return casestore.ErrNotFound
	}
	if m.beforeReplace != nil {
		m.beforeReplace(cur)
	}
	if cur.Version != expected {
		return casestore.ErrVersionConflict
	}
	next := c.Clone()
	next.Version = expected + 1
	m.cases[c.CaseID] = next
	c.Version = next.Version
	return nil
}

func (m *memCases) AppendNote(_ context.Context, caseID string, n models.Note) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[caseID]
	if !ok {
		return nil, casestore.ErrNotFound
	}
	c.Notes = append(c.Notes, n)
	c.Version++
	c.UpdatedAt = n.AddedAt
	return append([]models.Note(nil), c.Notes...), nil
}

func (m *memCases) Delete(_ context.Context, caseID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[caseID]; !ok {
		return 0, nil
	}
	delete(m.cases, caseID)
	return 1, nil
}

func (m *memCases) match(f casestore.Filter) []models.Case {
	var out []models.Case
	for _, c := range m.cases {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.AssignedOfficer != nil && c.AssignedOfficer != *f.AssignedOfficer {
			continue
		}
		out = append(out, *c.Clone())
	}
	return out
}

func (m *memCases) List(_ context.Context, f casestore.Filter, _ bson.D, skip, limit int64) ([]models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.match(f)
	if skip >= int64(len(all)) {
		return []models.Case{}, nil
	}
	all = all[skip:]
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memCases) Count(_ context.Context, f casestore.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(f))), nil
}

func (m *memCases) StatusCounts(_ context.Context, f casestore.Filter) (casestore.StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sc casestore.StatusCounts
	for _, c := range m.match(f) {
		sc.Total++
		switch c.Status {
		case models.CaseStatusPending:
			sc.Pending++
		case models.CaseStatusActive:
			sc.Active++
		case models.CaseStatusInvestigating:
			sc.Investigating++
		case models.CaseStatusSolved:
			sc.Solved++
		case models.CaseStatusClosed:
			sc.Closed++
		case models.CaseStatusCold:
			sc.Cold++
		}
	}
	return sc, nil
}

func (m *memCases) CountBy(_ context.Context, f casestore.Filter, field string) ([]casestore.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, c := range m.match(f) {
		switch field {
		case "type":
			counts[c.Type]++
		case "priority":
			counts[c.Priority]++
		}
	}
	out := []casestore.Bucket{}
	for k, n := range counts {
		out = append(out, casestore.Bucket{Key: k, Count: n})
	}
	return out, nil
}

type memUsers map[primitive.ObjectID]models.User

func (m memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return &u, nil
}

func (m memUsers) GetManyByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
