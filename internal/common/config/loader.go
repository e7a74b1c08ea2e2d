// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like KVK_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env overrides must land before the defaults, or a default host/rate
	// would mask KVK_API_HOST and RATE_LIMIT_CALLS.
	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so the binaries work from
// the repo root, a cmd directory and the test tree alike.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
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

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig falls back to well-known environment variables for
// values the YAML left empty. KVK_API_HOST and RATE_LIMIT_CALLS are the two
// knobs the proxy container historically exposed.
func overrideEmptyConfig(cfg *Config) {
	if cfg.KVK.APIKey == "" {
		if val := os.Getenv("KVK_API_KEY"); val != "" {
			cfg.KVK.APIKey = val
		}
	}
	if cfg.KVK.Host == "" {
		if val := os.Getenv("KVK_API_HOST"); val != "" {
			cfg.KVK.Host = val
		}
	}
	if cfg.KVK.RateLimitCalls == 0 {
		if val := os.Getenv("RATE_LIMIT_CALLS"); val != "" {
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.KVK.RateLimitCalls = n
			}
		}
	}
	if cfg.KVK.AbonnementID == "" {
		if val := os.Getenv("KVK_MUTATIE_ABONNEMENT_ID"); val != "" {
			cfg.KVK.AbonnementID = val
		}
	}

	// Database overrides
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Upstream defaults: api.kvk.nl at 100 requests/second unless told
	// otherwise, matching the upstream contract.
	if cfg.KVK.Host == "" {
		cfg.KVK.Host = "api.kvk.nl"
	}
	if cfg.KVK.RateLimitCalls == 0 {
		cfg.KVK.RateLimitCalls = 100
	}
	if cfg.KVK.Timeout == 0 {
		cfg.KVK.Timeout = 30000
	}
	if cfg.KVK.MaxRetries == 0 {
		cfg.KVK.MaxRetries = 5
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "basisprofielen"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Sync defaults: batch size 1 keeps DB lock windows short.
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 1
	}
	if cfg.Sync.FetchLimit == 0 {
		cfg.Sync.FetchLimit = 100
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 500
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 60
	}
	if cfg.Sync.CacheTTL == 0 {
		cfg.Sync.CacheTTL = 60
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":8080"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.KVK.APIKey == "" {
		return fmt.Errorf("kvk.api_key is required")
	}
	if cfg.KVK.RateLimitCalls <= 0 {
		return fmt.Errorf("kvk.rate_limit_calls must be positive")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	if cfg.Database.Elasticsearch.Enabled &&
		len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when elasticsearch is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
