package stationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("station not found")
	ErrDuplicateCode = errors.New("a station with this code already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("stations")}
}

func prepare(st *models.Station) {
	st.StationCode = normalize.StationCode(st.StationCode)
	st.StationName = normalize.Name(st.StationName)
	st.NameCI = text.Fold(st.StationName)
	st.Contact.Email = normalize.Email(st.Contact.Email)
	st.InCharge = strings.TrimSpace(st.InCharge)
}

// Create inserts st with a new id.
func (s *Store) Create(ctx context.Context, st models.Station) (models.Station, error) {
	st.ID = primitive.NewObjectID()
	prepare(&st)
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Station{}, ErrDuplicateCode
		}
		return models.Station{}, err
	}
	return st, nil
}

// GetByID loads one station.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Station, error) {
	var st models.Station
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetByCode loads a station by its code.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Station, error) {
	var st models.Station
	err := s.c.FindOne(ctx, bson.M{"station_code": normalize.StationCode(code)}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Update replaces the editable fields of the station and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, st models.Station) (*models.Station, error) {
	prepare(&st)
	set := bson.M{
		"station_code":    st.StationCode,
		"station_name":    st.StationName,
		"station_name_ci": st.NameCI,
		"address":         st.Address,
		"contact":         st.Contact,
		"in_charge":       st.InCharge,
		"updated_at":      time.Now().UTC(),
	}
	var out models.Station
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return &out, nil
}

// Delete removes a station and returns the number of deleted documents.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns all stations ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Station, error) {
	opts := options.Find().SetSort(bson.D{{Key: "station_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Station{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
