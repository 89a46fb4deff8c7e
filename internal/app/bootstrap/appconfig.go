// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, timeouts). AppConfig is everything specific to Nibras:
// storage, sessions, and the portal's behavior knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: nibras-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for links in notifications
	BaseURL string // e.g., "https://portal.nibras.example" or "http://localhost:3000"

	// Shared secret for the internal notify API. Backend jobs mint
	// short-lived HS256 bearer tokens from it.
	NotifyJWTSecret string

	// Tag that marks staff for "everyone" announcement fan-out.
	StaffTag string

	// Whether closed/approved/rejected requests still accept timeline
	// actions (late comments, PDF attachment).
	WorkflowAllowReopen bool
}
