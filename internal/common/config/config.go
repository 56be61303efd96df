// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Search        SearchConfig            `mapstructure:"search"`
	Reset         ResetConfig             `mapstructure:"reset"`
	SampleData    SampleDataConfig        `mapstructure:"sample_data"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Reporting     ReportingConfig         `mapstructure:"reporting"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsDevelopment reports whether the process runs in development mode.
// The flag is fixed at startup and drives the logger's console behaviour.
func (a AppConfig) IsDevelopment() bool {
	switch strings.ToLower(a.Environment) {
	case "development", "dev", "local":
		return true
	}
	return false
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

// PostgresConfig points at the platform database that owns the user collections.
// ServiceRoleKey is the privileged credential; it replaces the password in URL.
type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

// Configured reports whether both the URL and the service credential are present.
func (p PostgresConfig) Configured() bool {
	return p.URL != "" && p.ServiceRoleKey != ""
}

// Missing names the first absent setting as (config key, environment
// variable). Both are empty when the database is configured.
func (p PostgresConfig) Missing() (key, envVar string) {
	switch {
	case p.URL == "":
		return "database.postgres.url", "DATABASE_URL"
	case p.ServiceRoleKey == "":
		return "database.postgres.service_role_key", "DATABASE_SERVICE_ROLE_KEY"
	}
	return "", ""
}

// GetDSN returns the PostgreSQL connection string with the service credential applied.
func (p PostgresConfig) GetDSN() (string, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if p.ServiceRoleKey != "" {
		user := "service_role"
		if u.User != nil && u.User.Username() != "" {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, p.ServiceRoleKey)
	}
	return u.String(), nil
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// SearchConfig configures the external search provider.
type SearchConfig struct {
	BaseURL     string           `mapstructure:"base_url"`
	APIKey      string           `mapstructure:"api_key"`
	Timeout     int              `mapstructure:"timeout"` // milliseconds
	SearchDepth string           `mapstructure:"search_depth"`
	MaxResults  int              `mapstructure:"max_results"`
	Vocabulary  VocabularyConfig `mapstructure:"vocabulary"`
}

// VocabularyConfig holds the fixed business terms woven into every query.
type VocabularyConfig struct {
	Industry string `mapstructure:"industry"`
	Region   string `mapstructure:"region"`
	Year     string `mapstructure:"year"`
}

// ResetConfig configures the user data reset.
type ResetConfig struct {
	Collections   []string `mapstructure:"collections"`
	Transactional bool     `mapstructure:"transactional"`
	Timeout       int      `mapstructure:"timeout"` // milliseconds
}

// SampleDataConfig configures sample data generation.
type SampleDataConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig configures where user-facing error toasts are published.
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
}

// ReportingConfig selects the sinks that receive error-level log entries.
type ReportingConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds

	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`

	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		Region    string   `mapstructure:"region"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`

	Elasticsearch struct {
		Enabled bool   `mapstructure:"enabled"`
		Index   string `mapstructure:"index"`
	} `mapstructure:"elasticsearch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
