package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the complete configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Backend  BackendConfig  `toml:"backend"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Pixel    PixelConfig    `toml:"pixel"`
	Jobs     JobsConfig     `toml:"jobs"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SecureCookies  bool     `toml:"secure_cookies"`
	// APISunset (YYYY-MM-DD) marks the current API version deprecated
	APISunset        string `toml:"api_sunset"`
	APISunsetMessage string `toml:"api_sunset_message"`
}

// BackendConfig points at the remote PHP API
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLSeconds int    `toml:"token_ttl_seconds"`
	JWKSURL         string `toml:"jwks_url"`
	CookieName      string `toml:"cookie_name"`
}

// DatabaseConfig holds the audit trail database
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains cache and session mirror settings
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	SessionTTL int    `toml:"session_ttl_seconds"`
}

// StorageConfig contains MinIO settings for lead exports
type StorageConfig struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	Bucket        string `toml:"bucket"`
	URLTTLMinutes int    `toml:"url_ttl_minutes"`
}

// PixelConfig contains tracking snippet settings
type PixelConfig struct {
	Endpoint        string  `toml:"endpoint"`
	RateLimit       int     `toml:"rate_limit"`
	RateLimitWindow int     `toml:"rate_limit_window_seconds"`
	RelayPerSecond  float64 `toml:"relay_per_second"`
}

// JobsConfig contains scheduler settings
type JobsConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	PollConcurrency     int `toml:"poll_concurrency"`
	SessionIdleMinutes  int `toml:"session_idle_minutes"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json|console
}

// Default returns a configuration with development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost/api",
			TimeoutSeconds: 15,
		},
		Auth: AuthConfig{
			TokenTTLSeconds: 8 * 3600,
			CookieName:      "leadsync_token",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: 7 * 24 * 3600,
		},
		Storage: StorageConfig{
			Endpoint:      "localhost:9000",
			AccessKey:     "minioadmin",
			SecretKey:     "minioadmin",
			Bucket:        "leadsync-exports",
			URLTTLMinutes: 60,
		},
		Pixel: PixelConfig{
			Endpoint:        "http://localhost/api/pixel.php",
			RateLimit:       600,
			RateLimitWindow: 60,
			RelayPerSecond:  50,
		},
		Jobs: JobsConfig{
			PollIntervalSeconds: 30,
			PollConcurrency:     5,
			SessionIdleMinutes:  120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the TOML file (when present) over the defaults, then applies
// environment overrides. A .env file in the working directory is loaded first.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret is required (set JWT_SECRET)")
	}
	if c.Jobs.PollIntervalSeconds <= 0 {
		return fmt.Errorf("jobs.poll_interval_seconds must be positive")
	}
	if c.Server.APISunset != "" {
		if _, err := time.Parse(time.DateOnly, c.Server.APISunset); err != nil {
			return fmt.Errorf("invalid server.api_sunset %q: %w", c.Server.APISunset, err)
		}
	}
	return nil
}

// APISunset returns the configured sunset date of the current API version
func (c *Config) APISunset() (time.Time, bool) {
	if c.Server.APISunset == "" {
		return time.Time{}, false
	}
	sunset, err := time.Parse(time.DateOnly, c.Server.APISunset)
	return sunset, err == nil
}

// BackendTimeout returns the per-request timeout for the remote API
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TokenTTL returns the session token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

// SessionTTL returns the lifetime of the session mirror in redis
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Redis.SessionTTL) * time.Second
}

// PollInterval returns the dashboard refresh interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Jobs.PollIntervalSeconds) * time.Second
}

// SessionIdle returns how long an unused session stays in memory
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Jobs.SessionIdleMinutes) * time.Minute
}

// ExportURLTTL returns the lifetime of presigned export links
func (c *Config) ExportURLTTL() time.Duration {
	return time.Duration(c.Storage.URLTTLMinutes) * time.Minute
}

// PixelWindow returns the per-customer relay rate limit window
func (c *Config) PixelWindow() time.Duration {
	return time.Duration(c.Pixel.RateLimitWindow) * time.Second
}

func applyEnv(cfg *Config) {
	setString(&cfg.Backend.BaseURL, "BACKEND_BASE_URL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.JWKSURL, "JWKS_URL")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.Storage.UseSSL = v == "true"
	}
	setString(&cfg.Pixel.Endpoint, "PIXEL_ENDPOINT")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.APISunset, "API_SUNSET")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
