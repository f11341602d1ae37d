// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxAuthBodySize bounds login, profile and password bodies.
	MaxAuthBodySize = 16 << 10 // 16 KB

	// MaxCaseBodySize bounds case create and update bodies. Descriptions,
	// witness statements and evidence lists make these the largest.
	MaxCaseBodySize = 1 << 20 // 1 MB

	// MaxAdminBodySize bounds user and station admin bodies.
	MaxAdminBodySize = 64 << 10 // 64 KB

	// MaxSeedFileSize bounds the YAML seed file read at startup.
	MaxSeedFileSize = 4 << 20 // 4 MB
)
