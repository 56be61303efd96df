// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<env>.yaml on top and
// applies environment overrides. A missing base file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	cfg, err := finish(v)
	if err != nil {
		return nil, err
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideFromEnv fills credentials from the well-known variable names used by
// the deployment platform when the config file left them empty.
func overrideFromEnv(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = os.Getenv("APP_ENVIRONMENT")
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = firstEnv("SEARCH_API_KEY", "TAVILY_API_KEY")
	}

	if cfg.Database.Postgres.URL == "" {
		cfg.Database.Postgres.URL = firstEnv("DATABASE_URL", "SUPABASE_DB_URL")
	}
	if cfg.Database.Postgres.ServiceRoleKey == "" {
		cfg.Database.Postgres.ServiceRoleKey = firstEnv("DATABASE_SERVICE_ROLE_KEY", "SUPABASE_SERVICE_ROLE_KEY")
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = os.Getenv("REDIS_ADDRESS")
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = os.Getenv("ZEEBE_ADDRESS")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketpulse"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}

	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = "https://api.tavily.com/search"
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10000
	}
	if cfg.Search.SearchDepth == "" {
		cfg.Search.SearchDepth = "advanced"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.Vocabulary.Industry == "" {
		cfg.Search.Vocabulary.Industry = "jewelry"
	}
	if cfg.Search.Vocabulary.Region == "" {
		cfg.Search.Vocabulary.Region = "india"
	}
	if cfg.Search.Vocabulary.Year == "" {
		cfg.Search.Vocabulary.Year = "2025"
	}

	if len(cfg.Reset.Collections) == 0 {
		cfg.Reset.Collections = []string{"content", "market_data", "personas"}
	}
	if cfg.Reset.Timeout == 0 {
		cfg.Reset.Timeout = 15000
	}

	if cfg.SampleData.Timeout == 0 {
		cfg.SampleData.Timeout = 15000
	}

	if cfg.Notifications.Channel == "" {
		cfg.Notifications.Channel = "marketpulse:notifications"
	}

	if cfg.Reporting.Timeout == 0 {
		cfg.Reporting.Timeout = 3000
	}
	if cfg.Reporting.Elasticsearch.Index == "" {
		cfg.Reporting.Elasticsearch.Index = "marketpulse-errors"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		if cfg.App.IsDevelopment() {
			cfg.Logging.Format = "console"
		} else {
			cfg.Logging.Format = "json"
		}
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks internal consistency. Credentials are deliberately not
// required here: a missing search key or database URL fails the single request
// that needs it, not the whole process.
func validateConfig(cfg *Config) error {
	if cfg.Search.MaxResults < 1 || cfg.Search.MaxResults > 20 {
		return fmt.Errorf("search.max_results must be between 1 and 20, got %d", cfg.Search.MaxResults)
	}

	switch cfg.Search.SearchDepth {
	case "basic", "advanced":
	default:
		return fmt.Errorf("search.search_depth must be basic or advanced, got %q", cfg.Search.SearchDepth)
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	if cfg.Reporting.SNS.Enabled && cfg.Reporting.SNS.TopicARN == "" {
		return fmt.Errorf("reporting.sns.topic_arn is required when sns reporting is enabled")
	}
	if cfg.Reporting.SES.Enabled && (cfg.Reporting.SES.FromEmail == "" || len(cfg.Reporting.SES.ToEmails) == 0) {
		return fmt.Errorf("reporting.ses.from_email and to_emails are required when ses reporting is enabled")
	}
	if cfg.Reporting.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when elasticsearch reporting is enabled")
	}
	if cfg.Notifications.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when notifications are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
	}
}
