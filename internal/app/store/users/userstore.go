package userstore

import (
	"context"
	"errors"
	"regexp"
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
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when (username, role) is already taken.
	ErrDuplicateUsername = errors.New("a user with this username and role already exists")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	errBadRole   = errors.New(`role must be "admin"|"police"`)
	errBadStatus = errors.New(`status must be "active"|"inactive"|"suspended"`)
)

// publicProjection never loads the password hash.
var publicProjection = bson.M{"password_hash": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter, opts...).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user including credentials.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsernameAndRole loads the account a login attempt names.
func (s *Store) GetByUsernameAndRole(ctx context.Context, username, role string) (*models.User, error) {
	return s.findOne(ctx, bson.M{
		"username": normalize.Username(username),
		"role":     normalize.Role(role),
	})
}

// GetManyByIDs loads users keyed by id, without password hashes. Missing ids
// are simply absent from the map.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(publicProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// Create normalizes, validates and inserts u. PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.Role = normalize.Role(u.Role)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Station = normalize.StationCode(u.Station)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	u.LoginAttempts = 0
	u.LockUntil = nil

	switch u.Role {
	case models.RoleAdmin, models.RolePolice:
	default:
		return models.User{}, errBadRole
	}
	switch u.Status {
	case models.StatusActive, models.StatusInactive, models.StatusSuspended:
	default:
		return models.User{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, mapDup(err)
	}
	return u, nil
}

// mapDup turns a duplicate-key error into the sentinel for the violated index.
func mapDup(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if strings.Contains(err.Error(), "email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

// Update lists the mutable profile and admin fields. Nil fields are left as is.
type Update struct {
	FullName    *string
	Email       *string
	Phone       *string
	BadgeNumber *string
	Department  *string
	Station     *string
	Status      *string
	Permissions *[]string
}

// Update applies upd and returns the stored result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Phone != nil {
		set["phone"] = strings.TrimSpace(*upd.Phone)
	}
	if upd.BadgeNumber != nil {
		set["badge_number"] = strings.TrimSpace(*upd.BadgeNumber)
	}
	if upd.Department != nil {
		set["department"] = strings.TrimSpace(*upd.Department)
	}
	if upd.Station != nil {
		set["station"] = normalize.StationCode(*upd.Station)
	}
	if upd.Status != nil {
		st := normalize.Status(*upd.Status)
		switch st {
		case models.StatusActive, models.StatusInactive, models.StatusSuspended:
		default:
			return nil, errBadStatus
		}
		set["status"] = st
	}
	if upd.Permissions != nil {
		set["permissions"] = *upd.Permissions
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicProjection)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, mapDup(err)
	}
	return &u, nil
}

// SetPassword replaces the password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. It returns the number of deleted documents.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther reports whether email belongs to a user other than excludeID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// ListFilter narrows List and Count. Empty fields do not filter.
type ListFilter struct {
	Role    string
	Status  string
	Station string
	Search  string
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = normalize.Role(f.Role)
	}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.Station != "" {
		q["station"] = normalize.StationCode(f.Station)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"username": re},
			bson.M{"full_name_ci": primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(s))}},
			bson.M{"email": re},
			bson.M{"badge_number": re},
		}
	}
	return q
}

// List returns one page of users without password hashes.
func (s *Store) List(ctx context.Context, f ListFilter, sort bson.D, skip, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetProjection(publicProjection).
		SetSort(sort).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching f.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// ActiveOfficers lists active police users by name.
func (s *Store) ActiveOfficers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "username": 1, "full_name": 1, "badge_number": 1, "department": 1, "station": 1, "role": 1, "status": 1}).
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": models.RolePolice, "status": models.StatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
