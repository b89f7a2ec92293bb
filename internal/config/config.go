package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Log          LogConfig          `yaml:"log"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Notification NotificationConfig `yaml:"notification"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
}

// JWTConfig contains the shared secret of the identity provider
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	OverdueScan string `yaml:"overdue_scan"`
}

// NotificationConfig selects the sink used by the overdue scanner and where it delivers
type NotificationConfig struct {
	Channel     string         `yaml:"channel"` // "log", "telegram" or "sendgrid"
	Destination string         `yaml:"destination"`
	Telegram    TelegramConfig `yaml:"telegram"`
	SendGrid    SendGridConfig `yaml:"sendgrid"`

	SendTimeoutSeconds int `yaml:"send_timeout_seconds"` // per message
}

type TelegramConfig struct {
	Token          string `yaml:"token"`
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	APIHost   string `yaml:"api_host"`
	Subject   string `yaml:"subject"`
}

// RateLimitConfig bounds requests per authenticated identity
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	envString("JWT_SECRET", &c.JWT.Secret)

	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	envString("OVERDUE_SCAN_SCHEDULE", &c.Scheduler.OverdueScan)

	envString("NOTIFY_CHANNEL", &c.Notification.Channel)
	envString("NOTIFY_DESTINATION", &c.Notification.Destination)
	envString("TELEGRAM_BOT_TOKEN", &c.Notification.Telegram.Token)
	envString("TELEGRAM_CHAT_ID", &c.Notification.Destination)
	envString("SENDGRID_API_KEY", &c.Notification.SendGrid.APIKey)
	envString("SENDGRID_FROM_EMAIL", &c.Notification.SendGrid.FromEmail)
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.OverdueScan == "" {
		c.Scheduler.OverdueScan = "0 0 9 * * *" // Daily at 9 AM UTC
	}

	if err := c.Notification.validate(); err != nil {
		return err
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	return nil
}

func (n *NotificationConfig) validate() error {
	if n.Channel == "" {
		n.Channel = "log"
	}
	switch n.Channel {
	case "log":
	case "telegram":
		if n.Telegram.Token == "" {
			return fmt.Errorf("telegram token is required for the telegram channel")
		}
		if n.Destination == "" {
			return fmt.Errorf("telegram chat id (notification destination) is required")
		}
		if n.Telegram.APIURL == "" {
			n.Telegram.APIURL = "https://api.telegram.org"
		}
	case "sendgrid":
		if n.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required for the sendgrid channel")
		}
		if n.SendGrid.FromEmail == "" {
			return fmt.Errorf("sendgrid from email is required")
		}
		if n.Destination == "" {
			return fmt.Errorf("notification destination email is required")
		}
		if n.SendGrid.FromName == "" {
			n.SendGrid.FromName = "Library Service"
		}
		if n.SendGrid.APIHost == "" {
			n.SendGrid.APIHost = "https://api.sendgrid.com"
		}
		if n.SendGrid.Subject == "" {
			n.SendGrid.Subject = "Library overdue report"
		}
	default:
		return fmt.Errorf("unsupported notification channel: %q", n.Channel)
	}
	if n.Telegram.TimeoutSeconds == 0 {
		n.Telegram.TimeoutSeconds = 10
	}
	if n.SendTimeoutSeconds == 0 {
		n.SendTimeoutSeconds = 30
	}
	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
