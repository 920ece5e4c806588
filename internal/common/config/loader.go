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

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like XAI_API_KEY
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

	// Environment overlay, ignored if not present.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

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

// findProjectRoot walks up directories looking for go.mod.
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

// expandEnvVars expands ${VAR} placeholders in string values.
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

// overrideEmptyConfig fills secrets from the environment when the YAML left
// them empty (placeholders that did not expand).
func overrideEmptyConfig(cfg *Config) {
	if cfg.AI.APIKey == "" || strings.HasPrefix(cfg.AI.APIKey, "${") {
		if val := os.Getenv("XAI_API_KEY"); val != "" {
			cfg.AI.APIKey = val
		} else {
			cfg.AI.APIKey = ""
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "funding-advisor"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Discovery can take several staggered fetches; leave headroom.
		cfg.Server.WriteTimeout = 120000
	}

	if cfg.Discovery.CacheTTLMinutes == 0 {
		cfg.Discovery.CacheTTLMinutes = 30
	}
	if cfg.Discovery.AICacheTTLMinutes == 0 {
		cfg.Discovery.AICacheTTLMinutes = 1440
	}
	if cfg.Discovery.StaggerMs == 0 {
		cfg.Discovery.StaggerMs = 2000
	}
	if cfg.Discovery.FetchTimeoutMs == 0 {
		cfg.Discovery.FetchTimeoutMs = 15000
	}
	if cfg.Discovery.PerDomainConnections == 0 {
		cfg.Discovery.PerDomainConnections = 2
	}
	if cfg.Discovery.DefaultCallsPerMinute == 0 {
		cfg.Discovery.DefaultCallsPerMinute = 10
	}
	if cfg.Discovery.CachePrefix == "" {
		cfg.Discovery.CachePrefix = "funding:programs"
	}

	for key, src := range cfg.Sources {
		if src.CallsPerMinute == 0 {
			src.CallsPerMinute = cfg.Discovery.DefaultCallsPerMinute
		}
		cfg.Sources[key] = src
	}

	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.x.ai/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "grok-4-1-fast-non-reasoning"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60000
	}
	if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 3
	}
	if cfg.AI.Domain == "" {
		cfg.AI.Domain = "api.x.ai"
	}

	if cfg.Matching.MaxResults == 0 {
		cfg.Matching.MaxResults = 10
	}

	if cfg.Enrichment.BaseURL == "" {
		cfg.Enrichment.BaseURL = "https://avoindata.prh.fi/bis/v1"
	}
	if cfg.Enrichment.Timeout == 0 {
		cfg.Enrichment.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	for name, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}
		if src.URL == "" {
			return fmt.Errorf("sources.%s.url is required", name)
		}
		if src.Domain == "" {
			return fmt.Errorf("sources.%s.domain is required", name)
		}
	}

	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.enabled is true")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
