package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget enforced by the router (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Durable store
	DatabaseURL string // postgres URL; empty => in-memory store seeded from SeedFile
	SeedFile    string // optional YAML seed for the in-memory store
	Migrate     bool   // apply embedded migrations on start-up

	PostgresMaxConns       int32         // pgxpool max connections
	PostgresConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	PostgresRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	PostgresMaxWait        time.Duration // max wait between retries

	// Ranking
	HotRefreshInterval time.Duration // snapshot refresh period (default: 1m)
	HotRunTimeout      time.Duration // budget of one refresh run
	ReconcileInterval  time.Duration // counter reconciliation period (0 = disabled)
	OpTimeout          time.Duration // budget of one bookmark toggle
	BreakerFailures    int           // consecutive counter failures before the breaker opens
	BreakerOpenTimeout time.Duration // time the breaker stays open before probing

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // allowed origins for the public API
	RateBurst    int      // bookmark toggles burst per client IP
	RatePerMin   int      // bookmark toggles refill per client IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("INFRAME_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("INFRAME_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("INFRAME_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("INFRAME_LOG_LEVEL", "info"),
		PrettyLog: mustBool("INFRAME_PRETTY_LOG", true),

		// Durable store
		DatabaseURL:            getenv("INFRAME_DATABASE_URL", ""),
		SeedFile:               getenv("INFRAME_SEED_FILE", ""),
		Migrate:                mustBool("INFRAME_MIGRATE", true),
		PostgresMaxConns:       int32(getenvInt("POSTGRES_MAX_CONNS", 10)),
		PostgresConnectTimeout: mustDuration("POSTGRES_CONNECT_TIMEOUT", 30*time.Second),
		PostgresRetryInterval:  mustDuration("POSTGRES_RETRY_INTERVAL", 2*time.Second),
		PostgresMaxWait:        mustDuration("POSTGRES_MAX_WAIT", 10*time.Second),

		// Ranking
		HotRefreshInterval: mustDuration("INFRAME_HOT_REFRESH_INTERVAL", time.Minute),
		HotRunTimeout:      mustDuration("INFRAME_HOT_RUN_TIMEOUT", 30*time.Second),
		ReconcileInterval:  mustDuration("INFRAME_RECONCILE_INTERVAL", time.Hour),
		OpTimeout:          mustDuration("INFRAME_OP_TIMEOUT", 2*time.Second),
		BreakerFailures:    getenvInt("INFRAME_BREAKER_FAILURES", 5),
		BreakerOpenTimeout: mustDuration("INFRAME_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("INFRAME_REDIS_ADDR"),
		RedisUser:             getenv("INFRAME_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("INFRAME_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("INFRAME_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("INFRAME_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("INFRAME_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("INFRAME_TRUST_PROXY", true),
		CORSOrigins:  splitAndTrim(getenv("INFRAME_CORS_ORIGINS", "*")),
		RateBurst:    getenvInt("INFRAME_RATE_BURST", 20),
		RatePerMin:   getenvInt("INFRAME_RATE_PER_MIN", 60),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: INFRAME_REDIS_PASSWORD is required when INFRAME_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.HotRefreshInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: INFRAME_HOT_REFRESH_INTERVAL must be > 0, got %v", cfg.HotRefreshInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		if cfg.DatabaseURL != "" {
			cfgCopy.DatabaseURL = redactURL(cfg.DatabaseURL)
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// redactURL hides the password of a connection URL.
// Example: "postgres://app:secret@db:5432/inframe" -> "postgres://app:xxxxx@db:5432/inframe"
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***REDACTED***"
	}
	return u.Redacted()
}
