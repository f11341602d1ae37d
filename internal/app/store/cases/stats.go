package casestore

import (
	"context"
	"math"
	"time"

	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusCounts holds the number of cases in each status.
type StatusCounts struct {
	Total         int64 `bson:"total" json:"total"`
	Pending       int64 `bson:"pending" json:"pending"`
	Active        int64 `bson:"active" json:"active"`
	Investigating int64 `bson:"investigating" json:"investigating"`
	Solved        int64 `bson:"solved" json:"solved"`
	Closed        int64 `bson:"closed" json:"closed"`
	Cold          int64 `bson:"cold" json:"cold"`
}

// Bucket is one group of a distribution.
type Bucket struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// MonthBucket counts cases created in one calendar month.
type MonthBucket struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

// OfficerStats is one row of the officer performance report.
type OfficerStats struct {
	OfficerID    primitive.ObjectID `bson:"_id" json:"officerId"`
	OfficerName  string             `bson:"officer_name" json:"officerName"`
	BadgeNumber  string             `bson:"badge_number" json:"badgeNumber,omitempty"`
	Department   string             `bson:"department" json:"department,omitempty"`
	TotalCases   int64              `bson:"total" json:"totalCases"`
	SolvedCases  int64              `bson:"solved" json:"solvedCases"`
	ActiveCases  int64              `bson:"active" json:"activeCases"`
	PendingCases int64              `bson:"pending" json:"pendingCases"`
	SolveRate    float64            `bson:"-" json:"solveRate"`
}

func countIf(status string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
}

// StatusCounts counts cases matching f by status.
func (s *Store) StatusCounts(ctx context.Context, f Filter) (StatusCounts, error) {
	cur, err := s.c.Aggregate(ctx, bson.A{
		bson.M{"$match": f.Query()},
		bson.M{"$group": bson.M{
			"_id":           nil,
			"total":         bson.M{"$sum": 1},
			"pending":       countIf(models.CaseStatusPending),
			"active":        countIf(models.CaseStatusActive),
			"investigating": countIf(models.CaseStatusInvestigating),
			"solved":        countIf(models.CaseStatusSolved),
			"closed":        countIf(models.CaseStatusClosed),
			"cold":          countIf(models.CaseStatusCold),
		}},
	})
	if err != nil {
		return StatusCounts{}, err
	}
	defer cur.Close(ctx)

	var rows []StatusCounts
	if err := cur.All(ctx, &rows); err != nil {
		return StatusCounts{}, err
	}
	if len(rows) == 0 {
		return StatusCounts{}, nil
	}
	return rows[0], nil
}

// CountBy groups cases matching f by field (type, priority or status),
// largest group first.
func (s *Store) CountBy(ctx context.Context, f Filter, field string) ([]Bucket, error) {
	cur, err := s.c.Aggregate(ctx, bson.A{
		bson.M{"$match": f.Query()},
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Bucket{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the n most recently created cases matching f, summary fields only.
func (s *Store) Recent(ctx context.Context, f Filter, n int64) ([]models.Case, error) {
	opts := options.Find().
		SetProjection(bson.M{
			"case_id": 1, "title": 1, "status": 1, "priority": 1, "type": 1,
			"created_at": 1, "assigned_officer": 1, "assigned_officer_name": 1,
		}).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(n)
	cur, err := s.c.Find(ctx, f.Query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Case{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyTrends counts cases matching f created since since, per UTC month,
// oldest first. A CreatedFrom later than since narrows the window; CreatedTo
// still applies.
func (s *Store) MonthlyTrends(ctx context.Context, f Filter, since time.Time) ([]MonthBucket, error) {
	if f.CreatedFrom == nil || f.CreatedFrom.Before(since) {
		f.CreatedFrom = &since
	}
	match := f.Query()
	cur, err := s.c.Aggregate(ctx, bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$project": bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "count": 1}},
		bson.M{"$sort": bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []MonthBucket{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OfficerPerformance reports per-officer case totals for cases matching f,
// busiest officer first. Officer details come from the users collection and
// fall back to the snapshot stored on the case.
func (s *Store) OfficerPerformance(ctx context.Context, f Filter) ([]OfficerStats, error) {
	cur, err := s.c.Aggregate(ctx, bson.A{
		bson.M{"$match": f.Query()},
		bson.M{"$group": bson.M{
			"_id":           "$assigned_officer",
			"snapshot_name": bson.M{"$first": "$assigned_officer_name"},
			"total":         bson.M{"$sum": 1},
			"solved":        countIf(models.CaseStatusSolved),
			"active":        countIf(models.CaseStatusActive),
			"pending":       countIf(models.CaseStatusPending),
		}},
		bson.M{"$lookup": bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "officer",
		}},
		bson.M{"$unwind": bson.M{"path": "$officer", "preserveNullAndEmptyArrays": true}},
		bson.M{"$project": bson.M{
			"officer_name": bson.M{"$ifNull": bson.A{"$officer.full_name", "$snapshot_name"}},
			"badge_number": bson.M{"$ifNull": bson.A{"$officer.badge_number", ""}},
			"department":   bson.M{"$ifNull": bson.A{"$officer.department", ""}},
			"total":        1,
			"solved":       1,
			"active":       1,
			"pending":      1,
		}},
		bson.M{"$sort": bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []OfficerStats{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].SolveRate = SolveRate(out[i].SolvedCases, out[i].TotalCases)
	}
	return out, nil
}

// SolveRate is solved/total as a percentage rounded to two decimals.
func SolveRate(solved, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(solved)/float64(total)*10000) / 100
}
