// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct shared by the four
// sync binaries.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	KVK      KVKConfig      `mapstructure:"kvk"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"` // health/metrics listener, daemon mode only
}

// KVKConfig holds the upstream registry API settings.
type KVKConfig struct {
	Host           string `mapstructure:"host"`             // upstream hostname
	APIKey         string `mapstructure:"api_key"`          // apikey request header
	AbonnementID   string `mapstructure:"abonnement_id"`    // Mutatieservice subscription
	RateLimitCalls int    `mapstructure:"rate_limit_calls"` // requests/second, no burst
	Timeout        int    `mapstructure:"timeout"`          // milliseconds
	MaxRetries     int    `mapstructure:"max_retries"`      // attempts per request on 429/5xx
}

// BaseURL returns the registry API root for the configured host.
func (k KVKConfig) BaseURL() string {
	return fmt.Sprintf("https://%s/api", k.Host)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds the recent-fetch guard cache settings. The cache is
// optional; with Enabled false the sync apps run without it.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ElasticsearchConfig holds the optional search-mirror index settings.
type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// SyncConfig holds the shared sync tunables of the four apps.
type SyncConfig struct {
	BatchSize  int `mapstructure:"batch_size"`  // DB write batch size
	FetchLimit int `mapstructure:"fetch_limit"` // demand query limit per cycle
	PageSize   int `mapstructure:"page_size"`   // Mutatieservice page size
	Interval   int `mapstructure:"interval"`    // daemon cycle interval, minutes
	CacheTTL   int `mapstructure:"cache_ttl"`   // recent-fetch guard TTL, minutes
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
