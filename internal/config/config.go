// Package config loads application configuration from config.yaml and
// PROSPECTOR_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engines EnginesConfig `yaml:"engines" mapstructure:"engines"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	CRM     CRMConfig     `yaml:"crm" mapstructure:"crm"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	ICP     ICPConfig     `yaml:"icp" mapstructure:"icp"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds one discovery provider's credentials and limits.
type EngineConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Budget      int64   `yaml:"budget" mapstructure:"budget"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// EnginesConfig holds all discovery providers.
type EnginesConfig struct {
	Exa    EngineConfig `yaml:"exa" mapstructure:"exa"`
	Serper EngineConfig `yaml:"serper" mapstructure:"serper"`
	Apollo EngineConfig `yaml:"apollo" mapstructure:"apollo"`
}

// SearchConfig tunes the orchestrator.
type SearchConfig struct {
	MinResults     int     `yaml:"min_results" mapstructure:"min_results"`
	RelevanceFloor float64 `yaml:"relevance_floor" mapstructure:"relevance_floor"`
	CacheTTLMins   int     `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	DefaultLimit   int     `yaml:"default_limit" mapstructure:"default_limit"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

// StoreConfig configures the search log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// HubSpotConfig holds HubSpot private app credentials.
type HubSpotConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// CRMConfig holds the optional CRM connections used for enrichment.
type CRMConfig struct {
	HubSpot    HubSpotConfig    `yaml:"hubspot" mapstructure:"hubspot"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
}

// AnthropicConfig holds Anthropic API settings for query reformulation.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// LLMConfig groups model providers.
type LLMConfig struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
}

// ICPConfig configures scoring.
type ICPConfig struct {
	WeightsPath string `yaml:"weights_path" mapstructure:"weights_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and the
// environment, applying defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("engines.exa.base_url", "https://api.exa.ai")
	v.SetDefault("engines.exa.budget", 1000)
	v.SetDefault("engines.exa.timeout_secs", 15)
	v.SetDefault("engines.exa.rate_per_sec", 5)
	v.SetDefault("engines.serper.base_url", "https://google.serper.dev")
	v.SetDefault("engines.serper.budget", 2500)
	v.SetDefault("engines.serper.timeout_secs", 10)
	v.SetDefault("engines.serper.rate_per_sec", 10)
	v.SetDefault("engines.apollo.base_url", "https://api.apollo.io")
	v.SetDefault("engines.apollo.budget", 2000)
	v.SetDefault("engines.apollo.timeout_secs", 15)
	v.SetDefault("engines.apollo.rate_per_sec", 5)
	v.SetDefault("search.min_results", 3)
	v.SetDefault("search.relevance_floor", 0.25)
	v.SetDefault("search.cache_ttl_mins", 15)
	v.SetDefault("search.default_limit", 25)
	v.SetDefault("search.max_retries", 2)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.path", "prospector.db")
	v.SetDefault("crm.hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("crm.salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("llm.anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
