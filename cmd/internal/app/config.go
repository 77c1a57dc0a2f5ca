package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// Apply embedded migrations before serving.
	MigrateOnStart bool

	// Background deletion cadence for expired sessions. Zero disables.
	SessionSweepInterval time.Duration

	// If true, /readyz returns 503 unless the DB is reachable.
	ReadinessRequireDB bool

	// Browser origin allowlist. Entries may end in ":*" to match any port.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// Security policy:
	// If true, GRAVITY_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// refresh-secret hashing must be HMAC-based.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("GRAVITY_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("GRAVITY_LOG_LEVEL", "info"),
		LogPretty: EnvBool("GRAVITY_LOG_PRETTY", false),

		ReadHeaderTimeout: EnvDuration("GRAVITY_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("GRAVITY_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("GRAVITY_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("GRAVITY_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("GRAVITY_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("GRAVITY_DATABASE_URL", ""),
		DBSchema:    EnvString("GRAVITY_DB_SCHEMA", "gravity"),
		DBMaxConns:  EnvInt32("GRAVITY_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("GRAVITY_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("GRAVITY_MIGRATE_ON_START", false),

		SessionSweepInterval: EnvDuration("GRAVITY_SESSION_SWEEP_INTERVAL", time.Hour),

		ReadinessRequireDB: EnvBool("GRAVITY_READINESS_REQUIRE_DB", true),

		// Credentials default on: the refresh cookie rides on CORS requests.
		CORSAllowedOrigins:   EnvCSV("GRAVITY_CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),
		CORSAllowCredentials: EnvBool("GRAVITY_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("GRAVITY_CORS_MAX_AGE_SECONDS", 600),

		RequireTokenHMAC: EnvBool("GRAVITY_REQUIRE_TOKEN_HMAC", false),
	}
}
