// Package config loads and validates the screener configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full screener configuration.
type Config struct {
	Quote     string          `yaml:"quote"`
	Scan      ScanConfig      `yaml:"scan"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// ScanConfig holds the fan-out defaults.
type ScanConfig struct {
	Workers         int `yaml:"workers"`
	BarCount        int `yaml:"bar_count"`
	FetchTimeoutSec int `yaml:"fetch_timeout_secs"`
}

// ProvidersConfig holds per-provider endpoints and limits.
type ProvidersConfig struct {
	CoinGecko ProviderConfig `yaml:"coingecko"`
	Binance   ProviderConfig `yaml:"binance"`
}

// ProviderConfig configures one upstream API.
type ProviderConfig struct {
	BaseURL     string  `yaml:"base_url"`
	RPS         float64 `yaml:"rps"`
	Burst       int     `yaml:"burst"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// CacheConfig controls snapshot caching.
type CacheConfig struct {
	TTLSecs   int    `yaml:"ttl_secs"`
	RedisAddr string `yaml:"redis_addr"` // empty means in-memory only
	RedisKey  string `yaml:"redis_key"`
}

// MonitorConfig configures the /health and /metrics server.
type MonitorConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Quote: "USDT",
		Scan: ScanConfig{
			Workers:         30,
			BarCount:        200,
			FetchTimeoutSec: 8,
		},
		Providers: ProvidersConfig{
			CoinGecko: ProviderConfig{
				BaseURL:     "https://api.coingecko.com/api/v3",
				RPS:         2,
				Burst:       2,
				TimeoutSecs: 8,
			},
			Binance: ProviderConfig{
				BaseURL:     "https://api.binance.com",
				RPS:         10,
				Burst:       20,
				TimeoutSecs: 8,
			},
		},
		Cache: CacheConfig{
			TTLSecs:  0, // session-scoped: no expiry for a short-lived process
			RedisKey: "screener:snapshot",
		},
		Monitor: MonitorConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config file, applies defaults for omitted fields, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Quote == "" {
		c.Quote = def.Quote
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = def.Scan.Workers
	}
	if c.Scan.BarCount <= 0 {
		c.Scan.BarCount = def.Scan.BarCount
	}
	if c.Scan.FetchTimeoutSec <= 0 {
		c.Scan.FetchTimeoutSec = def.Scan.FetchTimeoutSec
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		c.Providers.CoinGecko = def.Providers.CoinGecko
	}
	if c.Providers.Binance.BaseURL == "" {
		c.Providers.Binance = def.Providers.Binance
	}
	if c.Cache.RedisKey == "" {
		c.Cache.RedisKey = def.Cache.RedisKey
	}
	if c.Monitor.Addr == "" {
		c.Monitor.Addr = def.Monitor.Addr
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Quote == "" {
		return fmt.Errorf("quote cannot be empty")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan workers must be positive, got %d", c.Scan.Workers)
	}
	if c.Scan.BarCount <= 0 {
		return fmt.Errorf("scan bar_count must be positive, got %d", c.Scan.BarCount)
	}
	if err := c.Providers.CoinGecko.validate("coingecko"); err != nil {
		return err
	}
	if err := c.Providers.Binance.validate("binance"); err != nil {
		return err
	}
	if c.Cache.TTLSecs < 0 {
		return fmt.Errorf("cache ttl_secs cannot be negative, got %d", c.Cache.TTLSecs)
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p.BaseURL == "" {
		return fmt.Errorf("provider %s: base_url cannot be empty", name)
	}
	if p.RPS <= 0 {
		return fmt.Errorf("provider %s: rps must be positive, got %v", name, p.RPS)
	}
	if p.Burst <= 0 {
		return fmt.Errorf("provider %s: burst must be positive, got %d", name, p.Burst)
	}
	if p.TimeoutSecs <= 0 {
		return fmt.Errorf("provider %s: timeout_secs must be positive, got %d", name, p.TimeoutSecs)
	}
	return nil
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (c *ScanConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// TTL returns the cache TTL as a duration.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// Timeout returns the provider request timeout as a duration.
func (p *ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}
