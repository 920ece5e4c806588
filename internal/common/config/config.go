package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Discovery  DiscoveryConfig         `mapstructure:"discovery"`
	Sources    map[string]SourceConfig `mapstructure:"sources"`
	AI         AIConfig                `mapstructure:"ai"`
	Matching   MatchingConfig          `mapstructure:"matching"`
	Enrichment EnrichmentConfig        `mapstructure:"enrichment"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DiscoveryConfig holds the pipeline-wide pacing and caching knobs.
type DiscoveryConfig struct {
	CacheTTLMinutes       int    `mapstructure:"cache_ttl_minutes"`    // scraping cache
	AICacheTTLMinutes     int    `mapstructure:"ai_cache_ttl_minutes"` // AI-backed variant
	StaggerMs             int    `mapstructure:"stagger_ms"`
	FetchTimeoutMs        int    `mapstructure:"fetch_timeout_ms"`
	PerDomainConnections  int    `mapstructure:"per_domain_connections"`
	DefaultCallsPerMinute int    `mapstructure:"default_calls_per_minute"`
	CachePrefix           string `mapstructure:"cache_prefix"`
}

// SourceConfig describes one external funding source.
type SourceConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	URL            string `mapstructure:"url"`
	Domain         string `mapstructure:"domain"`
	CallsPerMinute int    `mapstructure:"calls_per_minute"`
}

// AIConfig holds settings for the Grok-backed discovery variant.
type AIConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
	Domain     string `mapstructure:"domain"`
}

// MatchingConfig holds settings for the matching engine output.
type MatchingConfig struct {
	MaxResults int     `mapstructure:"max_results"` // 0 = unlimited
	MinScore   float64 `mapstructure:"min_score"`
}

// EnrichmentConfig holds settings for the company registry lookup.
type EnrichmentConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CacheTTL returns the scraping-cache TTL as a duration.
func (d DiscoveryConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLMinutes) * time.Minute
}

// AICacheTTL returns the AI-variant cache TTL as a duration.
func (d DiscoveryConfig) AICacheTTL() time.Duration {
	return time.Duration(d.AICacheTTLMinutes) * time.Minute
}

// Stagger returns the inter-source stagger delay as a duration.
func (d DiscoveryConfig) Stagger() time.Duration {
	return time.Duration(d.StaggerMs) * time.Millisecond
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (d DiscoveryConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutMs) * time.Millisecond
}

// Ceilings returns the per-domain calls-per-minute map for the rate limiter.
func (c *Config) Ceilings() map[string]int {
	out := make(map[string]int, len(c.Sources))
	for _, src := range c.Sources {
		if src.Domain != "" && src.CallsPerMinute > 0 {
			out[src.Domain] = src.CallsPerMinute
		}
	}
	return out
}
