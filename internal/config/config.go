package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/folio/internal/domain"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Portfolio API
	APIURL     string        // base URL of the REST API (ex: https://api.example.com/api/v1)
	APITimeout time.Duration // per-call timeout (default: 30s)
	LoginPath  string        // path of the login endpoint on the API (default: /auth/login)

	// Dashboard
	IconFile           string        // optional icons.yaml extending the built-in icon table
	IconReloadInterval time.Duration // interval to reload IconFile (default: 1h, 0 = only on POST /reload)
	SessionIdleTTL     time.Duration // idle sessions are closed after this (default: 2h)
	GCInterval         time.Duration // interval to run garbage collection (default: 10m)
	PageCacheTTL       time.Duration // lifetime of cached listing pages (default: 10m)
	CookieSecure       bool          // mark the session cookie Secure
	CORSOrigins        []string      // optional, origins allowed to call the dashboard API
	LoginBurst         int           // login attempts allowed in a burst per IP
	LoginRefillPerMin  int           // login attempts regained per minute per IP

	// Public site revalidation (optional)
	PublicRevalidateURL    string        // POST target receiving {"paths": [...]}
	PublicRevalidateSecret string        // sent as X-Revalidate-Secret
	RevalidateTimeout      time.Duration // webhook timeout (default: 10s)

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

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("FOLIO_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("FOLIO_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("FOLIO_LOG_LEVEL", "info"),
		PrettyLog: mustBool("FOLIO_PRETTY_LOG", true),

		// Portfolio API
		APIURL:     strings.TrimRight(requireEnv("FOLIO_API_URL"), "/"),
		APITimeout: mustDuration("FOLIO_API_TIMEOUT", 30*time.Second),
		LoginPath:  getenv("FOLIO_LOGIN_PATH", "/auth/login"),

		// Dashboard
		IconFile:           getenv("FOLIO_ICON_FILE", ""), // Optional, empty = built-in icons only
		IconReloadInterval: mustDuration("FOLIO_ICON_RELOAD_INTERVAL", time.Hour),
		SessionIdleTTL:     mustDuration("FOLIO_SESSION_IDLE_TTL", 2*time.Hour),
		GCInterval:         mustDuration("FOLIO_GC_INTERVAL", 10*time.Minute),
		PageCacheTTL:       mustDuration("FOLIO_PAGE_CACHE_TTL", 10*time.Minute),
		CookieSecure:       mustBool("FOLIO_COOKIE_SECURE", true),
		CORSOrigins:        splitAndTrim(getenv("FOLIO_CORS_ORIGINS", "")),
		LoginBurst:         getenvInt("FOLIO_LOGIN_BURST", 5),
		LoginRefillPerMin:  getenvInt("FOLIO_LOGIN_REFILL_PER_MIN", 5),

		// Public site revalidation
		PublicRevalidateURL:    getenv("FOLIO_PUBLIC_REVALIDATE_URL", ""),
		PublicRevalidateSecret: getenv("FOLIO_PUBLIC_REVALIDATE_SECRET", ""),
		RevalidateTimeout:      mustDuration("FOLIO_REVALIDATE_TIMEOUT", 10*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("FOLIO_REDIS_ADDR"),
		RedisUser:             getenv("FOLIO_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("FOLIO_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("FOLIO_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("FOLIO_REDIS_DB"),
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
		AllowedHosts: splitAndTrim(getenv("FOLIO_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("FOLIO_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("FOLIO_TRUST_PROXY", true),
	}

	if !domain.IsValidURL(cfg.APIURL) {
		panic(fmt.Sprintf("❌ FATAL: FOLIO_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL))
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: FOLIO_REDIS_PASSWORD is required when FOLIO_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.PublicRevalidateSecret != "" {
		cp.PublicRevalidateSecret = "***REDACTED***"
	}
	return cp
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

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
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
