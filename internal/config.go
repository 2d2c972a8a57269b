package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSessionTTL        = 30 * 24 * time.Hour
	DefaultHashIterations    = 150_000
	MinHashIterations        = 100_000
	DefaultSaltBytes         = 16
	DefaultTokenBytes        = 24
	DefaultAuditLimit        = 100
	DefaultAuditMaxLimit     = 500
	DefaultSweepInterval     = time.Hour
	DefaultMetricsPath       = "/metrics"
	DefaultSQLiteSource      = "server/data.db"
	DriverSQLite             = "sqlite"
	DriverPostgres           = "postgres"
	defaultHTTPPort          = 8787
	defaultReadTimeout       = 15 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type SecurityConfig struct {
	SessionTTL           time.Duration `mapstructure:"session_ttl"`
	HashIterations       int           `mapstructure:"hash_iterations"`
	SaltBytes            int           `mapstructure:"salt_bytes"`
	TokenBytes           int           `mapstructure:"token_bytes"`
	SessionSweepInterval time.Duration `mapstructure:"session_sweep_interval"`
}

type AuditConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- DEFAULTS -----------------

// ApplyDefaults fills every zero value with the documented default.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultHTTPPort
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultReadTimeout
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultReadTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Source == "" && c.Database.Driver == DriverSQLite {
		c.Database.Source = DefaultSQLiteSource
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 2
	}

	if c.Security.SessionTTL == 0 {
		c.Security.SessionTTL = DefaultSessionTTL
	}
	if c.Security.HashIterations == 0 {
		c.Security.HashIterations = DefaultHashIterations
	}
	if c.Security.SaltBytes == 0 {
		c.Security.SaltBytes = DefaultSaltBytes
	}
	if c.Security.TokenBytes == 0 {
		c.Security.TokenBytes = DefaultTokenBytes
	}

	if c.Audit.DefaultLimit == 0 {
		c.Audit.DefaultLimit = DefaultAuditLimit
	}
	if c.Audit.MaxLimit == 0 {
		c.Audit.MaxLimit = DefaultAuditMaxLimit
	}

	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = DefaultMetricsPath
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration from SCHED_* variables only, for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SCHED_HOST", ""),
			Port: getEnvAsInt("SCHED_PORT", 0),
		},
		Database: DatabaseConfig{
			Driver: getEnv("SCHED_DB_DRIVER", DriverSQLite),
			Source: getEnv("SCHED_DB_PATH", ""),
		},
		Security: SecurityConfig{
			SessionTTL:           getEnvAsDuration("SCHED_SESSION_TTL", 0),
			HashIterations:       getEnvAsInt("SCHED_HASH_ITERATIONS", 0),
			SessionSweepInterval: getEnvAsDuration("SCHED_SESSION_SWEEP_INTERVAL", DefaultSweepInterval),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("SCHED_LOG_LEVEL", ""),
				Format: getEnv("SCHED_LOG_FORMAT", "json"),
			},
			Metrics: MetricsConfig{
				Enabled: getEnv("SCHED_METRICS_ENABLED", "false") == "true",
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Audit.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("audit config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.HashIterations < MinHashIterations {
		return fmt.Errorf("hash_iterations must be at least %d", MinHashIterations)
	}
	if c.SaltBytes < DefaultSaltBytes {
		return fmt.Errorf("salt_bytes must be at least %d", DefaultSaltBytes)
	}
	if c.TokenBytes < DefaultTokenBytes {
		return fmt.Errorf("token_bytes must be at least %d", DefaultTokenBytes)
	}
	if c.SessionSweepInterval < 0 {
		return errors.New("session_sweep_interval cannot be negative")
	}
	return nil
}

func (c *AuditConfig) Validate() error {
	if c.DefaultLimit <= 0 || c.MaxLimit <= 0 {
		return errors.New("limits must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return errors.New("default_limit cannot exceed max_limit")
	}
	if c.MaxLimit > DefaultAuditMaxLimit {
		return fmt.Errorf("max_limit cannot exceed %d", DefaultAuditMaxLimit)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
