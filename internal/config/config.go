// Package config handles configuration loading for newsheat.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variable overrides.
const EnvPrefix = "NEWSHEAT"

// Config represents the complete application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"      json:"llm"`
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"  json:"sources"`
	Scan     ScanConfig     `mapstructure:"scan"     yaml:"scan"     json:"scan"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver" json:"resolver"`
	Session  SessionConfig  `mapstructure:"session"  yaml:"session"  json:"session"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// LLMConfig holds the external scoring model configuration. The model
// scorer is only enabled when GeminiKey is set.
type LLMConfig struct {
	Primary         string        `mapstructure:"primary"          yaml:"primary"          json:"primary"` // "gemini" or "none"
	GeminiKey       string        `mapstructure:"gemini_key"       yaml:"gemini_key"       json:"-"`
	GeminiURL       string        `mapstructure:"gemini_url"       yaml:"gemini_url"       json:"gemini_url"`
	PreferredModels []string      `mapstructure:"preferred_models" yaml:"preferred_models" json:"preferred_models"`
	Temperature     float64       `mapstructure:"temperature"      yaml:"temperature"      json:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"       yaml:"max_tokens"       json:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"          json:"timeout"`
}

// Enabled reports whether the model scorer should be used.
func (c LLMConfig) Enabled() bool {
	return c.GeminiKey != "" && c.Primary != "none"
}

// SourcesConfig holds per-adapter endpoints, timeouts and limits.
type SourcesConfig struct {
	FeedURL          string        `mapstructure:"feed_url"           yaml:"feed_url"           json:"feed_url"`
	FeedParams       string        `mapstructure:"feed_params"        yaml:"feed_params"        json:"feed_params"`
	FeedTimeout      time.Duration `mapstructure:"feed_timeout"       yaml:"feed_timeout"       json:"feed_timeout"`
	FeedRateBurst    int           `mapstructure:"feed_rate_burst"    yaml:"feed_rate_burst"    json:"feed_rate_burst"`
	FeedRateInterval time.Duration `mapstructure:"feed_rate_interval" yaml:"feed_rate_interval" json:"feed_rate_interval"`
	CnyesURL         string        `mapstructure:"cnyes_url"          yaml:"cnyes_url"          json:"cnyes_url"`
	CnyesTimeout     time.Duration `mapstructure:"cnyes_timeout"      yaml:"cnyes_timeout"      json:"cnyes_timeout"`
	YahooURL         string        `mapstructure:"yahoo_url"          yaml:"yahoo_url"          json:"yahoo_url"`
	YahooTimeout     time.Duration `mapstructure:"yahoo_timeout"      yaml:"yahoo_timeout"      json:"yahoo_timeout"`
	SettleDelay      time.Duration `mapstructure:"settle_delay"       yaml:"settle_delay"       json:"settle_delay"`
	MaxRecords       int           `mapstructure:"max_records"        yaml:"max_records"        json:"max_records"`
	UserAgents       []string      `mapstructure:"user_agents"        yaml:"user_agents"        json:"user_agents"`
}

// ScanConfig holds aggregation and display settings.
type ScanConfig struct {
	MergedNewsLimit int `mapstructure:"merged_news_limit" yaml:"merged_news_limit" json:"merged_news_limit"`
	SignalLimit     int `mapstructure:"signal_limit"      yaml:"signal_limit"      json:"signal_limit"`
}

// ResolverConfig holds ticker directory and fallback lookup settings.
type ResolverConfig struct {
	Bootstrap      bool          `mapstructure:"bootstrap"        yaml:"bootstrap"        json:"bootstrap"`
	MarketDataURL  string        `mapstructure:"market_data_url"  yaml:"market_data_url"  json:"market_data_url"`
	MarketDataTop  int           `mapstructure:"market_data_top"  yaml:"market_data_top"  json:"market_data_top"` // 0 = all listings
	TitleURLs      []string      `mapstructure:"title_urls"       yaml:"title_urls"       json:"title_urls"`
	SearchURL      string        `mapstructure:"search_url"       yaml:"search_url"       json:"search_url"`
	SearchSelector string        `mapstructure:"search_selector"  yaml:"search_selector"  json:"search_selector"`
	Timeout        time.Duration `mapstructure:"timeout"          yaml:"timeout"          json:"timeout"`
}

// SessionConfig controls how long API sessions keep their resolved ticker.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsheat/config.yaml (home directory)
//  3. /etc/newsheat/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSHEAT_<SECTION>_<KEY>, e.g., NEWSHEAT_LLM_GEMINI_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsheat"))
	v.AddConfigPath("/etc/newsheat")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults + env vars
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// DefaultUserAgents are realistic desktop browser identities rotated per
// adapter invocation.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.primary", "gemini")
	v.SetDefault("llm.gemini_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.preferred_models", []string{
		"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro",
	})
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", 60*time.Second)

	// Source adapter defaults
	v.SetDefault("sources.feed_url", "https://news.google.com/rss/search")
	v.SetDefault("sources.feed_params", "hl=zh-TW&gl=TW&ceid=TW:zh-Hant")
	v.SetDefault("sources.feed_timeout", 20*time.Second)
	v.SetDefault("sources.feed_rate_burst", 9)
	v.SetDefault("sources.feed_rate_interval", 200*time.Millisecond)
	v.SetDefault("sources.cnyes_url", "https://www.cnyes.com/search/news?q=%s")
	v.SetDefault("sources.cnyes_timeout", 15*time.Second)
	v.SetDefault("sources.yahoo_url", "https://tw.stock.yahoo.com/quote/%s.TW/news")
	v.SetDefault("sources.yahoo_timeout", 20*time.Second)
	v.SetDefault("sources.settle_delay", 1500*time.Millisecond)
	v.SetDefault("sources.max_records", 5)
	v.SetDefault("sources.user_agents", DefaultUserAgents)

	// Scan defaults
	v.SetDefault("scan.merged_news_limit", 30)
	v.SetDefault("scan.signal_limit", 15)

	// Resolver defaults
	v.SetDefault("resolver.bootstrap", true)
	v.SetDefault("resolver.market_data_url", "https://openapi.twse.com.tw/v1/exchangeReport/STOCK_DAY_ALL")
	v.SetDefault("resolver.market_data_top", 0)
	v.SetDefault("resolver.title_urls", []string{
		"https://histock.tw/stock/%s",
		"https://goodinfo.tw/tw/StockDetail.jsp?STOCK_ID=%s",
	})
	v.SetDefault("resolver.search_url", "https://tw.stock.yahoo.com/search?p=%s")
	v.SetDefault("resolver.search_selector", "a[href*='/quote/']")
	v.SetDefault("resolver.timeout", 10*time.Second)

	// Session defaults
	v.SetDefault("session.ttl", 30*time.Minute)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_LLM_GEMINI_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
