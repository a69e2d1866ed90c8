package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port string `env:"PORT" default:"8080"`
	Env  string `env:"ENV" default:"development"`

	StoreDriver  string `env:"STORE_DRIVER" default:"sqlite"`
	MongoURI     string `env:"MONGO_URI" default:"mongodb://localhost:27017/?replicaSet=rs0"`
	DatabaseName string `env:"DATABASE_NAME" default:"mediafolder"`
	SQLitePath   string `env:"SQLITE_PATH" default:"data/mediafolder.db"`

	JWTSecret  string   `env:"JWT_SECRET"`
	JWTIssuer  string   `env:"JWT_ISSUER" default:"mediafolder"`
	WriteRoles []string `env:"JWT_WRITE_ROLES" default:"admin,editor"`

	APIVersions    []string `env:"API_VERSIONS" default:"1"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	OrphanCleanupInterval time.Duration `env:"ORPHAN_CLEANUP_INTERVAL" default:"1h"`
	OrphanCleanupGrace    time.Duration `env:"ORPHAN_CLEANUP_GRACE" default:"10m"`

	LogLevel       string `env:"LOG_LEVEL" default:"info"`
	LogFormat      string `env:"LOG_FORMAT" default:"text"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" default:"true"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// AuthEnabled reports whether API routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	loadEnvFile()
	return load()
}

func load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg.APIVersions = trimAll(cfg.APIVersions)
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.WriteRoles = trimAll(cfg.WriteRoles)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found next to or above the working directory.
func loadEnvFile() {
	pwd, err := os.Getwd()
	if err != nil {
		slog.Warn("could not get working directory", "error", err)
		return
	}

	envPaths := []string{
		filepath.Join(pwd, ".env"),
		filepath.Join(filepath.Dir(pwd), ".env"),
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("failed to load .env file", "path", envPath, "error", err)
			continue
		}
		slog.Info("loaded environment variables", "path", envPath)
		return
	}

	slog.Info("no .env file found, using environment variables")
}

// LogConfig writes the effective configuration with secrets masked.
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		"port", c.Port,
		"env", c.Env,
		"store_driver", c.StoreDriver,
		"mongo_uri", maskConnectionString(c.MongoURI),
		"database", c.DatabaseName,
		"sqlite_path", c.SQLitePath,
		"jwt_secret", maskSecret(c.JWTSecret),
		"jwt_issuer", c.JWTIssuer,
		"api_versions", c.APIVersions,
		"allowed_origins", c.AllowedOrigins,
		"orphan_cleanup_interval", c.OrphanCleanupInterval,
		"metrics_enabled", c.MetricsEnabled,
	)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func maskConnectionString(uri string) string {
	if uri == "" {
		return "[NOT SET]"
	}
	if strings.Contains(uri, "@") {
		parts := strings.Split(uri, "@")
		if len(parts) >= 2 {
			return "[CREDENTIALS_HIDDEN]@" + parts[len(parts)-1]
		}
	}
	return uri
}

func validateConfig(cfg *Config) error {
	var errs []error

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
		if cfg.DatabaseName == "" {
			errs = append(errs, errors.New("DATABASE_NAME is required for the mongo store"))
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreSQLite, cfg.StoreDriver))
	}

	if cfg.IsProduction() && len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if cfg.AuthEnabled() && len(cfg.WriteRoles) == 0 {
		errs = append(errs, errors.New("JWT_WRITE_ROLES must name at least one role"))
	}

	if len(cfg.APIVersions) == 0 {
		errs = append(errs, errors.New("API_VERSIONS must list at least one version"))
	}
	for _, v := range cfg.APIVersions {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("API_VERSIONS entry %q is not a positive integer", v))
		}
	}

	if cfg.OrphanCleanupInterval < 0 {
		errs = append(errs, errors.New("ORPHAN_CLEANUP_INTERVAL must not be negative"))
	}
	if cfg.OrphanCleanupGrace < 0 {
		errs = append(errs, errors.New("ORPHAN_CLEANUP_GRACE must not be negative"))
	}

	if f := strings.ToLower(cfg.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	return errors.Join(errs...)
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func trimAll(values []string) []string {
	result := []string{}
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
