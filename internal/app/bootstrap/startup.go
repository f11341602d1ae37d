// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/app/system/workers"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Development accounts created on a dev database with no police users.
const devOfficerPassword = "police123"

// lockCleanup is started in Startup and stopped in Shutdown.
var lockCleanup *workers.LockCleanup

var devOfficers = []models.User{
	{Username: "officer1", FullName: "Officer One", Email: "officer1@crms.local", BadgeNumber: "B1001", Department: "Patrol"},
	{Username: "officer2", FullName: "Officer Two", Email: "officer2@crms.local", BadgeNumber: "B1002", Department: "Investigations"},
}

// Startup runs after the schema is in place and before the handler is
// built. It creates the bootstrap admin, the development officers and
// anything listed in the seed file, then starts the lock cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	cost := appCfg.BcryptCost
	if cost == 0 {
		cost = authn.DefaultBcryptCost
	}
	users := userstore.New(deps.MongoDatabase)

	if err := ensureDefaultAdmin(ctx, users, appCfg.DefaultAdminPassword, cost, logger); err != nil {
		return err
	}
	if coreCfg.Env == "dev" {
		if err := ensureDevOfficers(ctx, users, cost, logger); err != nil {
			return err
		}
	}
	if appCfg.SeedFile != "" {
		if err := loadSeed(ctx, deps, appCfg.SeedFile, cost, logger); err != nil {
			logger.Error("seed load failed", zap.String("file", appCfg.SeedFile), zap.Error(err))
			return err
		}
	}

	if appCfg.LockCleanupInterval > 0 {
		lockCleanup = workers.NewLockCleanup(users, logger, appCfg.LockCleanupInterval)
		lockCleanup.Start()
	}
	return nil
}

// ensureDefaultAdmin creates admin/<password> with every capability when the
// database has no admin account.
func ensureDefaultAdmin(ctx context.Context, users *userstore.Store, password string, cost int, logger *zap.Logger) error {
	n, err := users.Count(ctx, userstore.ListFilter{Role: models.RoleAdmin})
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	if password == "" {
		logger.Warn("no admin account exists and default_admin_password is blank; skipping bootstrap admin")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	u, err := users.Create(ctx, models.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FullName:     "System Administrator",
		Email:        "admin@crms.local",
		Status:       models.StatusActive,
		Permissions:  []string{models.PermAll},
	})
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	logger.Warn("created default admin account; change its password",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username))
	return nil
}

// ensureDevOfficers creates the development officers when no police account
// exists. Existing accounts with the same username or email are left alone.
func ensureDevOfficers(ctx context.Context, users *userstore.Store, cost int, logger *zap.Logger) error {
	n, err := users.Count(ctx, userstore.ListFilter{Role: models.RolePolice})
	if err != nil {
		return fmt.Errorf("count officers: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(devOfficerPassword), cost)
	if err != nil {
		return fmt.Errorf("hash officer password: %w", err)
	}
	for _, o := range devOfficers {
		o.PasswordHash = string(hash)
		o.Role = models.RolePolice
		o.Status = models.StatusActive
		o.Permissions = []string{models.PermCasesRead, models.PermCasesWrite}

		u, err := users.Create(ctx, o)
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateUsername) || errors.Is(err, userstore.ErrDuplicateEmail) {
				continue
			}
			return fmt.Errorf("create dev officer %s: %w", o.Username, err)
		}
		logger.Info("created development officer", zap.String("username", u.Username))
	}
	return nil
}
