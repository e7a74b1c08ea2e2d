package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBaseConfig drops a minimal configs/config.yaml into a temp working
// directory so Load runs end to end.
func writeBaseConfig(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))
	yaml := "database:\n  postgres:\n    host: localhost\n    database: kvk\n    user: kvk\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte(yaml), 0o600))
	t.Chdir(dir)
}

func TestLoadAppliesEnvKnobs(t *testing.T) {
	viper.Reset()
	t.Cleanup(func() { viper.Reset() })

	writeBaseConfig(t)
	t.Setenv("KVK_API_KEY", "secret-key")
	t.Setenv("KVK_API_HOST", "proxy.internal")
	t.Setenv("RATE_LIMIT_CALLS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	// Env values win over the built-in defaults.
	assert.Equal(t, "proxy.internal", cfg.KVK.Host)
	assert.Equal(t, 25, cfg.KVK.RateLimitCalls)
	assert.Equal(t, "https://proxy.internal/api", cfg.KVK.BaseURL())
}

func TestLoadDefaultsWithoutEnvKnobs(t *testing.T) {
	viper.Reset()
	t.Cleanup(func() { viper.Reset() })

	writeBaseConfig(t)
	t.Setenv("KVK_API_KEY", "secret-key")
	t.Setenv("KVK_API_HOST", "")
	t.Setenv("RATE_LIMIT_CALLS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "api.kvk.nl", cfg.KVK.Host)
	assert.Equal(t, 100, cfg.KVK.RateLimitCalls)
}

func TestApplyDefaultsUpstream(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	// The two knobs the proxy container exposed keep their documented
	// defaults when nothing is configured.
	assert.Equal(t, "api.kvk.nl", cfg.KVK.Host)
	assert.Equal(t, 100, cfg.KVK.RateLimitCalls)
	assert.Equal(t, "https://api.kvk.nl/api", cfg.KVK.BaseURL())
}

func TestApplyDefaultsKeepsConfiguredValues(t *testing.T) {
	cfg := &Config{}
	cfg.KVK.Host = "developers.kvk.nl"
	cfg.KVK.RateLimitCalls = 10
	applyDefaults(cfg)

	assert.Equal(t, "developers.kvk.nl", cfg.KVK.Host)
	assert.Equal(t, 10, cfg.KVK.RateLimitCalls)
	assert.Equal(t, "https://developers.kvk.nl/api", cfg.KVK.BaseURL())
}

func TestOverrideEmptyConfigFromEnv(t *testing.T) {
	t.Setenv("KVK_API_KEY", "secret-key")
	t.Setenv("KVK_API_HOST", "proxy.internal")
	t.Setenv("RATE_LIMIT_CALLS", "25")

	cfg := &Config{}
	overrideEmptyConfig(cfg)

	assert.Equal(t, "secret-key", cfg.KVK.APIKey)
	assert.Equal(t, "proxy.internal", cfg.KVK.Host)
	assert.Equal(t, 25, cfg.KVK.RateLimitCalls)
}

func TestOverrideEmptyConfigIgnoresBadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_CALLS", "not-a-number")

	cfg := &Config{}
	overrideEmptyConfig(cfg)
	applyDefaults(cfg)

	assert.Equal(t, 100, cfg.KVK.RateLimitCalls)
}

func TestApplyDefaultsSync(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, 1, cfg.Sync.BatchSize)
	assert.Equal(t, 100, cfg.Sync.FetchLimit)
	assert.Equal(t, 500, cfg.Sync.PageSize)
	assert.Equal(t, 60, cfg.Sync.Interval)
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	assert.Error(t, validateConfig(cfg)) // api key missing

	cfg.KVK.APIKey = "k"
	assert.Error(t, validateConfig(cfg)) // postgres host missing

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Database = "kvk"
	cfg.Database.Postgres.User = "kvk"
	assert.NoError(t, validateConfig(cfg))

	cfg.Database.Redis.Enabled = true
	assert.Error(t, validateConfig(cfg)) // redis enabled without address

	cfg.Database.Redis.Address = "localhost:6379"
	assert.NoError(t, validateConfig(cfg))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, User: "kvk", Password: "pw",
		Database: "mirror", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=kvk password=pw dbname=mirror sslmode=disable", p.GetDSN())
}
