// internal/app/features/stations/handler.go
package stations

import (
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the police station directory.
type Handler struct {
	DB       *mongo.Database
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		AuditLog: audit,
		Log:      logger,
	}
}
