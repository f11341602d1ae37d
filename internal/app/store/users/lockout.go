package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncrementLoginAttempts records one failed password in a single atomic
// pipeline update:
//
//   - if the stored lock has already expired, the counter restarts at 1 and
//     the lock is removed;
//   - otherwise the counter increases by one;
//   - when the counter reaches threshold and no lock is set, lock_until
//     becomes now+lockFor. An existing lock is never extended.
//
// The state after the update is returned.
func (s *Store) IncrementLoginAttempts(ctx context.Context, id primitive.ObjectID, now time.Time, threshold int, lockFor time.Duration) (models.LoginState, error) {
	hasLock := bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$type", Value: "$lock_until"}}, "date"}}}
	expired := bson.D{{Key: "$and", Value: bson.A{
		hasLock,
		bson.D{{Key: "$lte", Value: bson.A{"$lock_until", now}}},
	}}}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "login_attempts", Value: bson.D{{Key: "$cond", Value: bson.A{
				expired,
				1,
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$login_attempts", 0}}}, 1}}},
			}}}},
			{Key: "lock_until", Value: bson.D{{Key: "$cond", Value: bson.A{expired, "$$REMOVE", "$lock_until"}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "lock_until", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$gte", Value: bson.A{"$login_attempts", threshold}}},
					bson.D{{Key: "$not", Value: bson.A{hasLock}}},
				}}},
				now.Add(lockFor),
				"$lock_until",
			}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"login_attempts": 1, "lock_until": 1})

	var st models.LoginState
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LoginState{}, ErrNotFound
		}
		return models.LoginState{}, err
	}
	return st, nil
}

// ClearLoginAttempts zeroes the counter and removes any lock. When
// lastLogin is non-nil it is recorded as well (successful login); a nil
// lastLogin is an admin unlock.
func (s *Store) ClearLoginAttempts(ctx context.Context, id primitive.ObjectID, lastLogin *time.Time) error {
	set := bson.M{"login_attempts": 0}
	if lastLogin != nil {
		set["last_login"] = *lastLogin
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   set,
		"$unset": bson.M{"lock_until": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearExpiredLocks resets the counter and removes the lock on every account
// whose lock ended at or before now. It returns the number of accounts cleared.
func (s *Store) ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"lock_until": bson.M{"$lte": now}},
		bson.M{
			"$set":   bson.M{"login_attempts": 0},
			"$unset": bson.M{"lock_until": ""},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
