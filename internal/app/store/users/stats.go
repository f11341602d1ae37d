package userstore

import (
	"context"

	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Stats are account totals for the admin dashboard.
type Stats struct {
	Total     int64 `json:"total"`
	Admins    int64 `json:"admins"`
	Police    int64 `json:"police"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}

// Stats counts users by role and by status in one aggregation.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	pipeline := bson.A{
		bson.M{"$facet": bson.M{
			"byRole":   bson.A{bson.M{"$group": bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
			"byStatus": bson.A{bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	defer cur.Close(ctx)

	type bucket struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	var rows []struct {
		ByRole   []bucket `bson:"byRole"`
		ByStatus []bucket `bson:"byStatus"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Stats{}, err
	}

	var st Stats
	if len(rows) == 0 {
		return st, nil
	}
	for _, b := range rows[0].ByRole {
		st.Total += b.Count
		switch b.ID {
		case models.RoleAdmin:
			st.Admins = b.Count
		case models.RolePolice:
			st.Police = b.Count
		}
	}
	for _, b := range rows[0].ByStatus {
		switch b.ID {
		case models.StatusActive:
			st.Active = b.Count
		case models.StatusInactive:
			st.Inactive = b.Count
		case models.StatusSuspended:
			st.Suspended = b.Count
		}
	}
	return st, nil
}

// CountByStation returns how many users belong to station code.
func (s *Store) CountByStation(ctx context.Context, code string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"station": normalize.StationCode(code)})
}
