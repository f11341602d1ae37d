// internal/app/features/systemusers/handler.go
package systemusers

import (
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves account administration under /api/users.
type Handler struct {
	DB       *mongo.Database
	Auth     *authn.Authenticator
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a user administration handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, a *authn.Authenticator, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Auth:     a,
		AuditLog: audit,
		Log:      logger,
	}
}
