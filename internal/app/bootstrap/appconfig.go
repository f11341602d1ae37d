// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, log level and request limits; everything here is specific to
// the case records service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session tokens
	JWTSecret string        // HMAC key for signing tokens (must be strong in production)
	JWTExpiry time.Duration // token lifetime (default 24h)

	// Redis backs token revocation. A blank address disables logout revocation.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Account lockout
	LockoutThreshold int           // failed attempts before locking (default 5)
	LockoutDuration  time.Duration // lock length (default 2h)
	BcryptCost       int

	// LockCleanupInterval is how often expired locks are swept; zero disables the worker.
	LockCleanupInterval time.Duration

	// Rate limiting
	APIRateLimit  int           // requests per window per IP on /api
	APIRateWindow time.Duration // window for APIRateLimit
	LoginRateIP   int           // login attempts per minute per IP

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// CORS
	CORSOrigins []string

	// Bootstrap data
	SeedFile             string // optional YAML file with stations and users
	DefaultAdminPassword string // password for the admin account created on an empty database
}
