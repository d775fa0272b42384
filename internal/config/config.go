// Package config provides configuration management for the lead-harvester
// service. Values come from environment variables (optionally via .env),
// an optional yaml config file, and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default service configuration values.
const (
	defaultServiceName  = "lead-harvester"
	defaultServicePort  = 8090
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultBatchSize    = 2
	defaultPageSize     = 20
	defaultPollAttempts = 20
)

// Default durations.
const (
	defaultRequestTimeout   = 30 * time.Second
	defaultSubmitInterval   = 2 * time.Second
	defaultRetrieveInterval = 500 * time.Millisecond
	defaultPollInterval     = 30 * time.Second
	defaultIdleInterval     = 30 * time.Second
	defaultBusyInterval     = 5 * time.Second
)

// Default database configuration values.
const (
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "harvester"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5
	defaultDBConnLifetime = time.Hour
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Brightdata BrightdataConfig `mapstructure:"brightdata"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Harvester  HarvesterConfig  `mapstructure:"harvester"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name  string `mapstructure:"name"`
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// BrightdataConfig holds collection-service settings.
type BrightdataConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxIdleConns    int           `mapstructure:"max_idle_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
}

// HarvesterConfig holds pipeline tuning settings.
type HarvesterConfig struct {
	BatchSize        int           `mapstructure:"batch_size"`
	SubmitInterval   time.Duration `mapstructure:"submit_interval"`
	RetrieveInterval time.Duration `mapstructure:"retrieve_interval"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts  int           `mapstructure:"poll_max_attempts"`
	ExtractPageSize  int           `mapstructure:"extract_page_size"`
	IdleInterval     time.Duration `mapstructure:"idle_interval"`
	BusyInterval     time.Duration `mapstructure:"busy_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Load reads configuration from .env, environment variables, an optional
// config file, and defaults. Missing required values are a fatal startup
// error: the pipeline must not touch any item with an incomplete config.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Brightdata.URL == "" {
		return &ValidationError{Field: "brightdata.url", Message: "is required (BRIGHTDATA_URL)"}
	}

	if c.Brightdata.APIKey == "" {
		return &ValidationError{Field: "brightdata.api_key", Message: "is required (BRIGHTDATA_API_KEY)"}
	}

	if c.Database.Host == "" {
		return &ValidationError{Field: "database.host", Message: "is required"}
	}

	if c.Database.Database == "" {
		return &ValidationError{Field: "database.database", Message: "is required"}
	}

	if c.Harvester.BatchSize <= 0 {
		return &ValidationError{Field: "harvester.batch_size", Message: "must be positive"}
	}

	if c.Harvester.ExtractPageSize <= 0 {
		return &ValidationError{Field: "harvester.extract_page_size", Message: "must be positive"}
	}

	if c.Harvester.PollMaxAttempts <= 0 {
		return &ValidationError{Field: "harvester.poll_max_attempts", Message: "must be positive"}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", defaultServiceName)
	v.SetDefault("service.port", defaultServicePort)
	v.SetDefault("service.debug", false)

	v.SetDefault("brightdata.request_timeout", defaultRequestTimeout)

	v.SetDefault("database.host", defaultDBHost)
	v.SetDefault("database.port", defaultDBPort)
	v.SetDefault("database.user", defaultDBUser)
	v.SetDefault("database.database", defaultDBName)
	v.SetDefault("database.sslmode", defaultDBSSLMode)
	v.SetDefault("database.max_connections", defaultDBMaxConns)
	v.SetDefault("database.max_idle_connections", defaultDBMaxIdleConns)
	v.SetDefault("database.connection_max_lifetime", defaultDBConnLifetime)

	v.SetDefault("harvester.batch_size", defaultBatchSize)
	v.SetDefault("harvester.submit_interval", defaultSubmitInterval)
	v.SetDefault("harvester.retrieve_interval", defaultRetrieveInterval)
	v.SetDefault("harvester.poll_interval", defaultPollInterval)
	v.SetDefault("harvester.poll_max_attempts", defaultPollAttempts)
	v.SetDefault("harvester.extract_page_size", defaultPageSize)
	v.SetDefault("harvester.idle_interval", defaultIdleInterval)
	v.SetDefault("harvester.busy_interval", defaultBusyInterval)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.format", defaultLogFormat)
}

func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"service.port":                {"HARVESTER_PORT"},
		"service.debug":               {"APP_DEBUG"},
		"brightdata.url":              {"BRIGHTDATA_URL"},
		"brightdata.api_key":          {"BRIGHTDATA_API_KEY"},
		"database.host":               {"POSTGRES_HARVESTER_HOST", "POSTGRES_HOST"},
		"database.port":               {"POSTGRES_HARVESTER_PORT", "POSTGRES_PORT"},
		"database.user":               {"POSTGRES_HARVESTER_USER", "POSTGRES_USER"},
		"database.password":           {"POSTGRES_HARVESTER_PASSWORD", "POSTGRES_PASSWORD"},
		"database.database":           {"POSTGRES_HARVESTER_DB", "POSTGRES_DB"},
		"database.sslmode":            {"POSTGRES_SSLMODE"},
		"harvester.batch_size":        {"HARVESTER_BATCH_SIZE"},
		"harvester.poll_interval":     {"HARVESTER_POLL_INTERVAL"},
		"harvester.poll_max_attempts": {"HARVESTER_POLL_MAX_ATTEMPTS"},
		"harvester.extract_page_size": {"HARVESTER_EXTRACT_PAGE_SIZE"},
		"harvester.idle_interval":     {"WORKER_IDLE_SLEEP"},
		"logging.level":               {"LOG_LEVEL"},
		"logging.format":              {"LOG_FORMAT"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return nil
}
