// internal/app/features/dashboard/common.go
package dashboard

import (
	"context"
	"time"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	recentCases = 5
	trendMonths = 6
)

// officerRef is the assigned officer as shown on a recent case.
type officerRef struct {
	ID   string `json:"id"`
	Name string `json:"fullName"`
}

// recentCase is the summary row of the recent cases list.
type recentCase struct {
	CaseID          string     `json:"caseId"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	AssignedOfficer officerRef `json:"assignedOfficer"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// dashboardData is shared by every role's view. Users is only set for admins.
type dashboardData struct {
	Cases         casestore.StatusCounts  `json:"cases"`
	CaseTypes     []casestore.Bucket      `json:"caseTypes"`
	Priorities    []casestore.Bucket      `json:"priorities"`
	RecentCases   []recentCase            `json:"recentCases"`
	MonthlyTrends []casestore.MonthBucket `json:"monthlyTrends"`
	Users         any                     `json:"users,omitempty"`
}

// fetchCaseStats runs the case aggregations for f.
func fetchCaseStats(ctx context.Context, db *mongo.Database, f casestore.Filter, now time.Time) (dashboardData, error) {
	cases := casestore.New(db)
	var d dashboardData
	var err error

	if d.Cases, err = cases.StatusCounts(ctx, f); err != nil {
		return d, err
	}
	if d.CaseTypes, err = cases.CountBy(ctx, f, "type"); err != nil {
		return d, err
	}
	if d.Priorities, err = cases.CountBy(ctx, f, "priority"); err != nil {
		return d, err
	}

	recent, err := cases.Recent(ctx, f, recentCases)
	if err != nil {
		return d, err
	}
	d.RecentCases = make([]recentCase, 0, len(recent))
	for _, c := range recent {
		d.RecentCases = append(d.RecentCases, recentCase{
			CaseID:   c.CaseID,
			Title:    c.Title,
			Type:     c.Type,
			Status:   c.Status,
			Priority: c.Priority,
			AssignedOfficer: officerRef{
				ID:   c.AssignedOfficer.Hex(),
				Name: c.AssignedOfficerName,
			},
			CreatedAt: c.CreatedAt,
		})
	}

	since := now.UTC().AddDate(0, -trendMonths, 0)
	if d.MonthlyTrends, err = cases.MonthlyTrends(ctx, f, since); err != nil {
		return d, err
	}
	return d, nil
}
