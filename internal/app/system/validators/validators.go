// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/crms/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("cases", casesSchema())
	ensure("stations", stationsSchema())

	// No validators; the collections are still created up front.
	ensure("counters", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 115 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum(values []string) bson.M {
	a := make(bson.A, 0, len(values))
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

var (
	nonBlank   = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer    = bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0}
	date       = bson.M{"bsonType": "date"}
	optDate    = bson.M{"bsonType": bson.A{"date", "null"}}
	optString  = bson.M{"bsonType": bson.A{"string", "null"}}
	stringList = bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}}
)

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "role", "password_hash", "full_name", "email", "status"},
			"properties": bson.M{
				"username":       nonBlank,
				"password_hash":  nonBlank,
				"full_name":      nonBlank,
				"full_name_ci":   nonBlank,
				"email":          nonBlank,
				"role":           enum(models.Roles),
				"status":         enum(models.Statuses),
				"permissions":    bson.M{"bsonType": bson.A{"array", "null"}, "items": enum(models.Permissions)},
				"login_attempts": integer,
				"lock_until":     optDate,
				"last_login":     optDate,
			},
		},
	}
}

func casesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"case_id", "title", "type", "status", "priority", "incident_date", "description", "assigned_officer", "version"},
			"properties": bson.M{
				"case_id":          bson.M{"bsonType": "string", "pattern": "^[A-Z0-9]+$"},
				"title":            bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.MaxTitleLength},
				"description":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.MaxDescriptionLength},
				"type":             enum(models.CaseTypes),
				"status":           enum(models.CaseStatuses),
				"priority":         enum(models.CasePriorities),
				"incident_date":    date,
				"reported_date":    optDate,
				"assigned_officer": bson.M{"bsonType": "objectId"},
				"closed_date":      optDate,
				"closure_reason":   optString,
				"related_cases":    stringList,
				"tags":             stringList,
				"version":          integer,
				"notes": bson.M{
					"bsonType": bson.A{"array", "null"},
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"id", "content", "added_by", "added_at"},
						"properties": bson.M{
							"content": bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.MaxNoteLength},
						},
					},
				},
				"update_log": bson.M{
					"bsonType": bson.A{"array", "null"},
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"updated_by", "updated_at", "changes"},
					},
				},
			},
		},
	}
}

func stationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"station_code", "station_name"},
			"properties": bson.M{
				"station_code":    bson.M{"bsonType": "string", "pattern": "^[A-Z0-9_-]+$"},
				"station_name":    nonBlank,
				"station_name_ci": nonBlank,
			},
		},
	}
}
