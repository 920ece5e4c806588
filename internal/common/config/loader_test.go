package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
database:
  redis:
    address: "localhost:6379"
sources:
  business_finland:
    enabled: true
    url: "https://www.businessfinland.fi/en/funding"
    domain: "www.businessfinland.fi"
    calls_per_minute: 6
`

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "funding-advisor", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Minute, cfg.Discovery.CacheTTL())
	assert.Equal(t, 24*time.Hour, cfg.Discovery.AICacheTTL())
	assert.Equal(t, 2*time.Second, cfg.Discovery.Stagger())
	assert.Equal(t, 15*time.Second, cfg.Discovery.FetchTimeout())
	assert.Equal(t, 2, cfg.Discovery.PerDomainConnections)
	assert.Equal(t, "funding:programs", cfg.Discovery.CachePrefix)
	assert.Equal(t, "https://api.x.ai/v1", cfg.AI.BaseURL)
	assert.Equal(t, 10, cfg.Matching.MaxResults)
	assert.Equal(t, "https://avoindata.prh.fi/bis/v1", cfg.Enrichment.BaseURL)
}

func TestLoadFromFileMissingRedisAddress(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, `
sources: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.address")
}

func TestLoadFromFileEnabledSourceNeedsURL(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, `
database:
  redis:
    address: "localhost:6379"
sources:
  ely:
    enabled: true
    domain: "www.ely-keskus.fi"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources.ely.url")
}

func TestLoadFromFileAIRequiresKey(t *testing.T) {
	t.Setenv("XAI_API_KEY", "")
	_, err := LoadFromFile(writeConfig(t, `
database:
  redis:
    address: "localhost:6379"
ai:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai.api_key")
}

func TestLoadFromFileExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("XAI_API_KEY", "xai-test-key")
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  redis:
    address: "localhost:6379"
ai:
  enabled: true
  api_key: "${XAI_API_KEY}"
`))
	require.NoError(t, err)
	assert.Equal(t, "xai-test-key", cfg.AI.APIKey)
}

func TestCeilings(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	ceilings := cfg.Ceilings()
	assert.Equal(t, 6, ceilings["www.businessfinland.fi"])
}
