// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the default signing key. ValidateConfig refuses it in prod.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest signing key accepted in prod.
const minProdSecretLen = 32

// appConfigKeys defines the configuration keys for CRMS.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CRMS_MONGO_URI, CRMS_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crms", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Session tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Token signing key (at least 32 bytes in production)"},
	{Name: "jwt_expiry", Default: "24h", Desc: "Token lifetime (e.g., 24h, 90m)"},

	// Redis (token revocation)
	{Name: "redis_addr", Default: "", Desc: "Redis address host:port (blank disables logout revocation)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "redis_prefix", Default: "crms", Desc: "Key prefix for revocation entries"},

	// Account lockout
	{Name: "lockout_threshold", Default: 5, Desc: "Failed logins before an account is locked"},
	{Name: "lockout_duration", Default: "2h", Desc: "How long a locked account stays locked"},
	{Name: "bcrypt_cost", Default: 12, Desc: "bcrypt work factor for password hashes"},
	{Name: "lock_cleanup_interval", Default: "5m", Desc: "How often expired account locks are reset (0 disables)"},

	// Rate limiting
	{Name: "api_rate_limit", Default: 100, Desc: "API requests allowed per window per IP"},
	{Name: "api_rate_window", Default: "15m", Desc: "API rate limit window"},
	{Name: "login_rate_ip", Default: 10, Desc: "Login attempts allowed per minute per IP"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// CORS
	{Name: "cors_origins", Default: "http://localhost:3000", Desc: "Comma-separated list of allowed browser origins"},

	// Bootstrap data
	{Name: "seed_file", Default: "", Desc: "Optional YAML file of stations and users loaded at startup"},
	{Name: "default_admin_password", Default: "admin123", Desc: "Password for the admin account created on an empty database"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CRMS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CRMS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 24*time.Hour),

		RedisAddr:     strings.TrimSpace(appValues.String("redis_addr")),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		RedisPrefix:   appValues.String("redis_prefix"),

		LockoutThreshold: appValues.Int("lockout_threshold"),
		LockoutDuration:  appValues.Duration("lockout_duration", 2*time.Hour),
		BcryptCost:       appValues.Int("bcrypt_cost"),

		LockCleanupInterval: appValues.Duration("lock_cleanup_interval", 5*time.Minute),

		APIRateLimit:  appValues.Int("api_rate_limit"),
		APIRateWindow: appValues.Duration("api_rate_window", 15*time.Minute),
		LoginRateIP:   appValues.Int("login_rate_ip"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		CORSOrigins: splitList(appValues.String("cors_origins")),

		SeedFile:             strings.TrimSpace(appValues.String("seed_file")),
		DefaultAdminPassword: appValues.String("default_admin_password"),
	}

	return coreCfg, appCfg, nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before attempting to connect. In production the
// token signing key must be changed from the development default and be long
// enough for HMAC-SHA256.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTExpiry <= 0 {
		return errors.New("jwt_expiry must be positive")
	}
	if appCfg.BcryptCost != 0 && (appCfg.BcryptCost < 4 || appCfg.BcryptCost > 31) {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31, got %d", appCfg.BcryptCost)
	}
	if appCfg.APIRateLimit < 0 || appCfg.LoginRateIP < 0 {
		return errors.New("rate limits must not be negative")
	}

	if coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret {
			return errors.New("jwt_secret must be changed from the development default in production")
		}
		if len(appCfg.JWTSecret) < minProdSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d bytes in production", minProdSecretLen)
		}
		if appCfg.RedisAddr == "" {
			logger.Warn("redis_addr not set; logout will not revoke tokens")
		}
	}

	return nil
}
