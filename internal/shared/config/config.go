package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notification delivery modes.
const (
	NotificationModeSync   = "sync"
	NotificationModeQueued = "queued"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	Notification NotificationConfig `mapstructure:"notification"`
	Invitation   InvitationConfig   `mapstructure:"invitation"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Address != ""
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// SMTPConfig holds SMTP configuration. An empty host logs notifications instead of sending them.
type SMTPConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	FromAddress      string        `mapstructure:"from_address"`
	FromName         string        `mapstructure:"from_name"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// NotificationConfig holds notification delivery configuration.
type NotificationConfig struct {
	Mode          string        `mapstructure:"mode"`
	Workers       int           `mapstructure:"workers"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	MarkerTTL     time.Duration `mapstructure:"marker_ttl"`
	LeaseTTL      time.Duration `mapstructure:"lease_ttl"`
}

// InvitationConfig holds invitation workflow configuration.
type InvitationConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TargetCacheTTL time.Duration `mapstructure:"target_cache_ttl"`
	CreateLimit    int           `mapstructure:"create_limit"`
	CreateWindow   time.Duration `mapstructure:"create_window"`
}

// TracingConfig holds OpenTelemetry configuration. An empty endpoint disables export.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/invite-server")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// INVITE_DATABASE_HOST overrides database.host
	v.SetEnvPrefix("INVITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Short names for secrets
	if secret := os.Getenv("INVITE_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("INVITE_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("INVITE_SMTP_PASSWORD"); password != "" {
		cfg.SMTP.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	switch c.Notification.Mode {
	case NotificationModeSync, NotificationModeQueued:
	default:
		return fmt.Errorf("notification.mode must be %q or %q, got %q",
			NotificationModeSync, NotificationModeQueued, c.Notification.Mode)
	}
	if c.Notification.Mode == NotificationModeQueued && c.Notification.LeaseTTL <= c.Notification.PollTimeout {
		return errors.New("notification.lease_ttl must exceed notification.poll_timeout")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Invitation.BaseURL == "" {
		return errors.New("invitation.base_url is required")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_swagger", true)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "invites")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	// SMTP defaults
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_address", "noreply@localhost")
	v.SetDefault("smtp.from_name", "Invitations")
	v.SetDefault("smtp.failure_threshold", 5)
	v.SetDefault("smtp.open_timeout", 30*time.Second)

	// Notification defaults
	v.SetDefault("notification.mode", NotificationModeSync)
	v.SetDefault("notification.workers", 4)
	v.SetDefault("notification.poll_timeout", 2*time.Second)
	v.SetDefault("notification.max_attempts", 5)
	v.SetDefault("notification.retry_delay", 5*time.Second)
	v.SetDefault("notification.queue_capacity", 1024)
	v.SetDefault("notification.marker_ttl", 7*24*time.Hour)
	v.SetDefault("notification.lease_ttl", 2*time.Minute)

	// Invitation defaults
	v.SetDefault("invitation.base_url", "http://localhost:8080")
	v.SetDefault("invitation.target_cache_ttl", 30*time.Second)
	v.SetDefault("invitation.create_limit", 50)
	v.SetDefault("invitation.create_window", time.Hour)

	// Tracing defaults
	v.SetDefault("tracing.service_name", "invite-server")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
