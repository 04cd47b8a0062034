package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string

	// DB
	DatabaseURL string
	LogSQL      bool

	// Tokens / issuer
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int

	// Cookies
	AccessCookieTTL  time.Duration
	RefreshCookieTTL time.Duration
	CookieSecure     bool
	CookieDomain     string

	// HTTP
	Addr           string
	TrustProxy     bool
	CORSOrigins    []string
	LoginRateLimit int

	// Adapters; empty disables or falls back to an in-process implementation.
	RedisURL string
	NATSURL  string
	SMTP     SMTP
	MailFrom string
	BaseURL  string

	JanitorSchedule string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env", "error", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogSQL:      getbool("LOG_SQL", false),

		Issuer:        getenv("ISSUER", "aquapulse"),
		AccessSecret:  os.Getenv("JWT_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     getdur("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getdur("REFRESH_TTL", 7*24*time.Hour),
		BcryptCost:    getint("BCRYPT_COST", 10),

		AccessCookieTTL:  getdur("ACCESS_COOKIE_TTL", time.Hour),
		RefreshCookieTTL: getdur("REFRESH_COOKIE_TTL", 7*24*time.Hour),
		CookieSecure:     getbool("COOKIE_SECURE", false),
		CookieDomain:     os.Getenv("COOKIE_DOMAIN"),

		Addr:           getenv("ADDR", ":3000"),
		TrustProxy:     getbool("TRUST_PROXY", false),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		LoginRateLimit: getint("LOGIN_RATE_LIMIT", 10),

		RedisURL: os.Getenv("REDIS_URL"),
		NATSURL:  os.Getenv("NATS_URL"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getint("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
		},
		MailFrom: getenv("MAIL_FROM", "no-reply@aquapulse.local"),
		BaseURL:  getenv("APP_BASE_URL", "http://localhost:5173"),

		JanitorSchedule: getenv("JANITOR_SCHEDULE", "*/5 * * * *"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	for k, v := range map[string]string{
		"DATABASE_URL":       c.DatabaseURL,
		"JWT_SECRET":         c.AccessSecret,
		"JWT_REFRESH_SECRET": c.RefreshSecret,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", k))
		}
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsDevelopment() bool { return c.Environment == "development" }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid bool, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid int, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
