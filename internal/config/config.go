package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Resume   ResumeConfig   `mapstructure:"resume"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ClamdAddr      string   `mapstructure:"clamd_addr"`
	CookieDomain   string   `mapstructure:"cookie_domain"`
	Production     bool     `mapstructure:"production"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig contains the Redis connection used for rate limits, token revocation and notifications.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig holds the RS256 key material and token lifetimes.
type AuthConfig struct {
	PrivateKeyPath        string        `mapstructure:"private_key_path"`
	PublicKeyPath         string        `mapstructure:"public_key_path"`
	AccessTokenTTL        time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL       time.Duration `mapstructure:"refresh_token_ttl"`
	LoginRateLimitPerHour int           `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL          time.Duration `mapstructure:"login_lock_ttl"`
}

// ResumeConfig tunes the public sharing surface.
type ResumeConfig struct {
	ViewHistoryLimit  int           `mapstructure:"view_history_limit"`
	PublicRateLimit   int           `mapstructure:"public_rate_limit"`
	PublicRateWindow  time.Duration `mapstructure:"public_rate_window"`
	AvatarMaxBytes    int64         `mapstructure:"avatar_max_bytes"`
	AvatarURLTTL      time.Duration `mapstructure:"avatar_url_ttl"`
	DefaultPageSize   int           `mapstructure:"default_page_size"`
	MaxPageSize       int           `mapstructure:"max_page_size"`
	NotifyOwnerOnView bool          `mapstructure:"notify_owner_on_view"`
}

// WorkerConfig contains asynq worker settings.
type WorkerConfig struct {
	Concurrency       int    `mapstructure:"concurrency"`
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
}

// RedisAddr returns host:port for go-redis and asynq.
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = [][2]string{
	{"api.port", "API_PORT"},
	{"api.allowed_origins", "API_ALLOWED_ORIGINS"},
	{"api.clamd_addr", "CLAMD_ADDR"},
	{"api.cookie_domain", "COOKIE_DOMAIN"},
	{"api.production", "API_PRODUCTION"},
	{"log.level", "LOG_LEVEL"},
	{"log.format", "LOG_FORMAT"},
	{"database.host", "DATABASE_HOST"},
	{"database.port", "DATABASE_PORT"},
	{"database.name", "POSTGRES_DB"},
	{"database.user", "POSTGRES_USER"},
	{"database.password", "POSTGRES_PASSWORD"},
	{"database.sslmode", "DATABASE_SSLMODE"},
	{"database.log_level", "DATABASE_LOG_LEVEL"},
	{"redis.host", "REDIS_HOST"},
	{"redis.port", "REDIS_PORT"},
	{"redis.password", "REDIS_PASSWORD"},
	{"redis.db", "REDIS_DB"},
	{"minio.endpoint", "MINIO_ENDPOINT"},
	{"minio.public_endpoint", "MINIO_PUBLIC_ENDPOINT"},
	{"minio.access_key_id", "MINIO_ACCESS_KEY_ID"},
	{"minio.secret_access_key", "MINIO_SECRET_ACCESS_KEY"},
	{"minio.use_ssl", "MINIO_USE_SSL"},
	{"minio.bucket", "MINIO_BUCKET"},
	{"minio.region", "MINIO_REGION"},
	{"minio.bucket_lookup", "MINIO_BUCKET_LOOKUP"},
	{"minio.auto_create_bucket", "MINIO_AUTO_CREATE_BUCKET"},
	{"auth.private_key_path", "JWT_PRIVATE_KEY_PATH"},
	{"auth.public_key_path", "JWT_PUBLIC_KEY_PATH"},
	{"auth.access_token_ttl", "JWT_ACCESS_TOKEN_TTL"},
	{"auth.refresh_token_ttl", "JWT_REFRESH_TOKEN_TTL"},
	{"auth.login_rate_limit_per_hour", "LOGIN_RATE_LIMIT_PER_HOUR"},
	{"auth.login_lock_threshold", "LOGIN_LOCK_THRESHOLD"},
	{"auth.login_lock_ttl", "LOGIN_LOCK_TTL"},
	{"resume.view_history_limit", "RESUME_VIEW_HISTORY_LIMIT"},
	{"resume.public_rate_limit", "RESUME_PUBLIC_RATE_LIMIT"},
	{"resume.public_rate_window", "RESUME_PUBLIC_RATE_WINDOW"},
	{"resume.avatar_max_bytes", "RESUME_AVATAR_MAX_BYTES"},
	{"resume.avatar_url_ttl", "RESUME_AVATAR_URL_TTL"},
	{"resume.default_page_size", "RESUME_DEFAULT_PAGE_SIZE"},
	{"resume.max_page_size", "RESUME_MAX_PAGE_SIZE"},
	{"resume.notify_owner_on_view", "RESUME_NOTIFY_OWNER_ON_VIEW"},
	{"worker.concurrency", "WORKER_CONCURRENCY"},
	{"worker.reconcile_schedule", "WORKER_RECONCILE_SCHEDULE"},
}

// Load resolves the configuration. Precedence, highest first: environment
// (including an optional .env in the working directory), the YAML/JSON file
// named by CONFIG_FILE, built-in defaults.
func Load() (*Config, error) {
	// a missing .env is normal inside containers
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for _, b := range envBindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return nil, fmt.Errorf("bind %s to %s: %w", b[0], b[1], err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitOrigins(cfg.API.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"api.port":                       8080,
		"api.allowed_origins":            []string{"http://localhost:3000"},
		"api.production":                 false,
		"log.level":                      "info",
		"log.format":                     "text",
		"database.host":                  "localhost",
		"database.port":                  5432,
		"database.name":                  "resume_builder",
		"database.user":                  "resume_builder",
		"database.password":              "resume_builder",
		"database.sslmode":               "disable",
		"database.log_level":             "warn",
		"redis.host":                     "localhost",
		"redis.port":                     6379,
		"redis.db":                       0,
		"minio.endpoint":                 "localhost:9000",
		"minio.public_endpoint":          "http://localhost:9000",
		"minio.use_ssl":                  false,
		"minio.bucket":                   "resume-assets",
		"minio.region":                   "us-east-1",
		"minio.bucket_lookup":            "auto",
		"minio.auto_create_bucket":       true,
		"auth.private_key_path":          "keys/jwt_private.pem",
		"auth.public_key_path":           "keys/jwt_public.pem",
		"auth.access_token_ttl":          15 * time.Minute,
		"auth.refresh_token_ttl":         7 * 24 * time.Hour,
		"auth.login_rate_limit_per_hour": 10,
		"auth.login_lock_threshold":      5,
		"auth.login_lock_ttl":            15 * time.Minute,
		"resume.view_history_limit":      100,
		"resume.public_rate_limit":       120,
		"resume.public_rate_window":      time.Minute,
		"resume.avatar_max_bytes":        2 * 1024 * 1024,
		"resume.avatar_url_ttl":          15 * time.Minute,
		"resume.default_page_size":       10,
		"resume.max_page_size":           100,
		"resume.notify_owner_on_view":    true,
		"worker.concurrency":             5,
		"worker.reconcile_schedule":      "@every 1h",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// splitOrigins accepts both a list and a single comma separated env value.
func splitOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.API.Port > 0, "api port must be positive")
	check(c.Database.Host != "" && c.Database.Port > 0, "database host and port are required")
	check(c.Database.Name != "" && c.Database.User != "", "database name and user are required")
	check(c.Database.Password != "", "database password is required")
	check(c.Database.SSLMode != "", "database sslmode is required")
	check(c.Redis.Host != "" && c.Redis.Port > 0, "redis host and port are required")
	check(c.MinIO.Endpoint != "" && c.MinIO.Bucket != "", "minio endpoint and bucket are required")
	check(c.Auth.AccessTokenTTL > 0 && c.Auth.RefreshTokenTTL > c.Auth.AccessTokenTTL, "refresh token ttl must exceed a positive access token ttl")
	check(c.Auth.LoginLockThreshold > 0 && c.Auth.LoginRateLimitPerHour > 0, "login limits must be positive")
	check(c.Resume.ViewHistoryLimit > 0, "resume view history limit must be positive")
	check(c.Resume.DefaultPageSize > 0 && c.Resume.MaxPageSize >= c.Resume.DefaultPageSize, "resume page sizes are inconsistent")
	check(c.Resume.PublicRateLimit > 0 && c.Resume.PublicRateWindow > 0, "public rate limit must be positive")
	check(c.Worker.Concurrency > 0, "worker concurrency must be positive")

	return errors.Join(errs...)
}
