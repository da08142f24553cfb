package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TargetDateRule describes one configured target date for suggestion
// generation. Either Weekday (0 = Sunday) or Month/Day must be set; the
// resolver picks the next occurrence after the current time.
type TargetDateRule struct {
	Label   string `yaml:"label"`
	Weekday *int   `yaml:"weekday,omitempty"`
	Month   *int   `yaml:"month,omitempty"`
	Day     *int   `yaml:"day,omitempty"`
	Hour    int    `yaml:"hour"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	AI struct {
		BaseURL string `yaml:"base_url" env:"AI_BASE_URL"`
		APIKey  string `yaml:"api_key" env:"AI_API_KEY"`
		Model   string `yaml:"model" env:"AI_MODEL"`
		Timeout string `yaml:"timeout" env:"AI_TIMEOUT"`
	} `yaml:"ai"`

	Suggestions struct {
		CacheTTL     string           `yaml:"cache_ttl" env:"SUGGESTIONS_CACHE_TTL"`
		BroadcastTTL string           `yaml:"broadcast_ttl" env:"SUGGESTIONS_BROADCAST_TTL"`
		TargetDates  []TargetDateRule `yaml:"target_dates"`
	} `yaml:"suggestions"`

	Notify struct {
		WebhookURL string `yaml:"webhook_url" env:"NOTIFY_WEBHOOK_URL"`
		Timeout    string `yaml:"timeout" env:"NOTIFY_TIMEOUT"`
	} `yaml:"notify"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "communio"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Redis.Addr = "localhost:6379"
	config.Redis.DB = 0

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "communio.app"

	config.AI.Model = "gpt-4o-mini"
	config.AI.Timeout = "30s"

	config.Suggestions.CacheTTL = "6h"
	config.Suggestions.BroadcastTTL = "168h"
	config.Suggestions.TargetDates = DefaultTargetDates()

	config.Notify.Timeout = "10s"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// DefaultTargetDates reproduces the stock rotation of three target dates:
// two weekend slots and one fixed festival date.
func DefaultTargetDates() []TargetDateRule {
	saturday := 6
	sunday := 0
	month := 10
	day := 28
	return []TargetDateRule{
		{Label: "Saturday Evening", Weekday: &saturday, Hour: 18},
		{Label: "Sunday Brunch", Weekday: &sunday, Hour: 11},
		{Label: "Autumn Lantern Festival", Month: &month, Day: &day, Hour: 19},
	}
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Suggestions.CacheTTL); err != nil {
		return fmt.Errorf("invalid suggestion cache TTL format: %w", err)
	}

	if len(config.Suggestions.TargetDates) == 0 {
		return fmt.Errorf("at least one suggestion target date is required")
	}
	for i, rule := range config.Suggestions.TargetDates {
		if rule.Weekday == nil && (rule.Month == nil || rule.Day == nil) {
			return fmt.Errorf("target date %d: weekday or month/day is required", i)
		}
		if rule.Hour < 0 || rule.Hour > 23 {
			return fmt.Errorf("target date %d: hour out of range", i)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
