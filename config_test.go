package premortem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.Policy.LikelihoodThreshold)
	assert.Equal(t, DefaultVetoMarker, cfg.Policy.VetoMarker)
	assert.Equal(t, OpenFDA, cfg.Policy.RestrictedSource)
	assert.Equal(t, InMemoryStore, cfg.Store.Type)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("PREMORTEM_ADDR", "")
	t.Setenv("PREMORTEM_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "premortem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: DEBUG
policy:
  likelihood_threshold: 0.7
  rules:
    - id: no-p99
      expression: scenario.probability > 0.99
registry:
  base_url: https://registry.example.com
  timeout: 2s
cache:
  type: redis
  ttl: 10m
  redis:
    address: localhost:6379
generator:
  type: gemini
  options:
    api_key: from-file
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 0.7, cfg.Policy.LikelihoodThreshold)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultPolicyConfig().RestrictedTerms, cfg.Policy.RestrictedTerms)
	require.Len(t, cfg.Policy.Rules, 1)
	assert.Equal(t, "no-p99", cfg.Policy.Rules[0].ID)
	assert.Equal(t, 2*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Address)
	assert.Equal(t, "from-file", cfg.Generator.Options["api_key"], "file settings win over the environment")
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("PREMORTEM_ADDR", ":9999")
	t.Setenv("PREMORTEM_LOG_LEVEL", "WARN")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Generator.Options["api_key"])
	assert.Equal(t, "gemini-test", cfg.Generator.Options["model"])
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "WARN", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   ErrorCode
	}{
		{"threshold above one", func(c *Config) { c.Policy.LikelihoodThreshold = 1.5 }, PolicyConfigInvalid},
		{"no restricted terms", func(c *Config) { c.Policy.RestrictedTerms = nil }, PolicyConfigInvalid},
		{"rule without expression", func(c *Config) { c.Policy.Rules = []ExpressionRuleConfig{{ID: "x"}} }, PolicyConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Store.Type = S3Store }, Unknown},
		{"cassandra without hosts", func(c *Config) { c.Store.Type = CassandraStore }, Unknown},
		{"unknown store", func(c *Config) { c.Store.Type = "dynamo" }, Unknown},
		{"redis without settings", func(c *Config) { c.Cache.Type = RedisCache }, Unknown},
		{"unknown cache", func(c *Config) { c.Cache.Type = "memcached" }, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLogLevel("debug").String())
	assert.Equal(t, "WARN", ParseLogLevel("WARN").String())
	assert.Equal(t, "ERROR", ParseLogLevel("error").String())
	assert.Equal(t, "INFO", ParseLogLevel("verbose").String())
}
