// internal/app/features/profile/handler.go
package profile

import (
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the caller's own profile and password endpoints.
type Handler struct {
	DB       *mongo.Database
	Auth     *authn.Authenticator
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, a *authn.Authenticator, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Auth:     a,
		AuditLog: audit,
		Log:      logger,
	}
}
