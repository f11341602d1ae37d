package casestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no case matches.
	ErrNotFound = errors.New("case not found")
	// ErrVersionConflict is returned when a conditional replace finds a
	// newer version than the one the caller read.
	ErrVersionConflict = errors.New("case was modified concurrently")
	// ErrDuplicateCaseID is returned when the case id is already taken.
	ErrDuplicateCaseID = errors.New("case id already exists")
)

type Store struct {
	c        *mongo.Collection
	counters *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("cases"),
		counters: db.Collection("counters"),
	}
}

// NextCaseID atomically takes the next sequence number for year and returns
// the formatted id, e.g. CASE20260007.
func (s *Store) NextCaseID(ctx context.Context, year int) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": fmt.Sprintf("case_%d", year)},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE%d%04d", year, doc.Seq), nil
}

// Create inserts c at version 1.
func (s *Store) Create(ctx context.Context, c models.Case) (models.Case, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CaseID = normalize.CaseID(c.CaseID)
	if c.Version == 0 {
		c.Version = 1
	}
	fillEmpty(&c)

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Case{}, ErrDuplicateCaseID
		}
		return models.Case{}, err
	}
	return c, nil
}

// fillEmpty stores empty arrays rather than nulls so later $push and
// clients see a list.
func fillEmpty(c *models.Case) {
	if c.Suspects == nil {
		c.Suspects = []models.Suspect{}
	}
	if c.Witnesses == nil {
		c.Witnesses = []models.Witness{}
	}
	if c.Evidence == nil {
		c.Evidence = []models.Evidence{}
	}
	if c.RelatedCases == nil {
		c.RelatedCases = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Notes == nil {
		c.Notes = []models.Note{}
	}
	if c.UpdateLog == nil {
		c.UpdateLog = []models.UpdateLogEntry{}
	}
}

// GetByCaseID loads a case by its human-readable id.
func (s *Store) GetByCaseID(ctx context.Context, caseID string) (*models.Case, error) {
	var c models.Case
	err := s.c.FindOne(ctx, bson.M{"case_id": normalize.CaseID(caseID)}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ReplaceIfVersion writes c only if the stored version still equals
// expected. On success c.Version is expected+1.
func (s *Store) ReplaceIfVersion(ctx context.Context, c *models.Case, expected int64) error {
	next := *c
	next.Version = expected + 1
	fillEmpty(&next)

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": c.ID, "version": expected}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": c.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	c.Version = next.Version
	return nil
}

// AppendNote pushes n onto the case's notes and bumps the version in one
// update. It returns the notes list after the append.
func (s *Store) AppendNote(ctx context.Context, caseID string, n models.Note) ([]models.Note, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"notes": 1})
	var doc struct {
		Notes []models.Note `bson:"notes"`
	}
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"case_id": normalize.CaseID(caseID)},
		bson.M{
			"$push": bson.M{"notes": n},
			"$inc":  bson.M{"version": 1},
			"$set":  bson.M{"updated_at": n.AddedAt},
		},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.Notes, nil
}

// Delete removes a case and returns the number of deleted documents.
func (s *Store) Delete(ctx context.Context, caseID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"case_id": normalize.CaseID(caseID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Filter narrows List, Count and the aggregations. Zero fields do not filter.
type Filter struct {
	Status          string
	Type            string
	Priority        string
	AssignedOfficer *primitive.ObjectID
	Search          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// Query returns the Mongo filter document for f.
func (f Filter) Query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.AssignedOfficer != nil {
		q["assigned_officer"] = *f.AssignedOfficer
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		r := bson.M{}
		if f.CreatedFrom != nil {
			r["$gte"] = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			r["$lte"] = *f.CreatedTo
		}
		q["created_at"] = r
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"case_id": re},
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"tags": re},
			bson.M{"location.address": re},
			bson.M{"complainant.name": re},
		}
	}
	return q
}

// List returns one page of cases. The update log is not loaded.
func (s *Store) List(ctx context.Context, f Filter, sort bson.D, skip, limit int64) ([]models.Case, error) {
	opts := options.Find().
		SetProjection(bson.M{"update_log": 0}).
		SetSort(sort).
		SetSkip(skip).
		SetLimit(limit)
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

// Count returns the number of cases matching f.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.Query())
}

// CountOpenAssigned counts cases assigned to officer that are not closed or solved.
func (s *Store) CountOpenAssigned(ctx context.Context, officer primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"assigned_officer": officer,
		"status":           bson.M{"$nin": bson.A{models.CaseStatusClosed, models.CaseStatusSolved}},
	})
}
