// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Probes    ProbesConfig    `yaml:"probes" mapstructure:"probes"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProbesConfig holds credentials and endpoints for the enrichment probes.
// Empty values leave the corresponding probe in degraded (empty-result)
// mode. LinkedIn needs no credentials, only an on/off switch.
type ProbesConfig struct {
	LinkedInEnabled  bool   `yaml:"linkedin_enabled" mapstructure:"linkedin_enabled"`
	RegistryBaseURL  string `yaml:"registry_base_url" mapstructure:"registry_base_url"`
	RegistryAPIToken string `yaml:"registry_api_token" mapstructure:"registry_api_token"`
	KGraphAPIKey     string `yaml:"kgraph_api_key" mapstructure:"kgraph_api_key"`
}

// StoreConfig configures the discovery cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres", "memory"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DiscoveryConfig configures the discovery orchestrator.
type DiscoveryConfig struct {
	TimeoutSecs       int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLHours     int      `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	RequiredSources   []string `yaml:"required_sources" mapstructure:"required_sources"`
	OptionalSources   []string `yaml:"optional_sources" mapstructure:"optional_sources"`
	MaxValidations    int      `yaml:"max_validations" mapstructure:"max_validations"`
	ValidateTimeoutMS int      `yaml:"validate_timeout_ms" mapstructure:"validate_timeout_ms"`
	BreakerThreshold  int      `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs  int      `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// Timeout returns the orchestration deadline.
func (d DiscoveryConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSecs) * time.Second
}

// CacheTTL returns the staleness cutoff for cached discoveries.
func (d DiscoveryConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLHours) * time.Hour
}

// CrawlConfig configures the priority crawler.
type CrawlConfig struct {
	MaxPages         int     `yaml:"max_pages" mapstructure:"max_pages"`
	RequestsPerSec   float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	FetchTimeoutSecs int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	MaxBodyBytes     int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	ProfilePath      string  `yaml:"profile_path" mapstructure:"profile_path"` // optional scoring profile YAML
}

// FetchTimeout returns the per-request fetch timeout.
func (c CrawlConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect-scout.db")
	v.SetDefault("discovery.timeout_secs", 30)
	v.SetDefault("discovery.cache_ttl_hours", 24)
	v.SetDefault("discovery.required_sources", []string{"website"})
	v.SetDefault("discovery.optional_sources", []string{"linkedin", "registry", "kgraph"})
	v.SetDefault("discovery.max_validations", 10)
	v.SetDefault("discovery.validate_timeout_ms", 10000)
	v.SetDefault("discovery.breaker_threshold", 5)
	v.SetDefault("discovery.breaker_reset_secs", 30)
	v.SetDefault("probes.linkedin_enabled", true)
	v.SetDefault("probes.registry_base_url", "")
	v.SetDefault("probes.registry_api_token", "")
	v.SetDefault("probes.kgraph_api_key", "")
	v.SetDefault("crawl.max_pages", 5)
	v.SetDefault("crawl.requests_per_sec", 1.0)
	v.SetDefault("crawl.fetch_timeout_secs", 15)
	v.SetDefault("crawl.max_body_bytes", 10*1024*1024)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (compatible; ProspectScout/1.0)")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
