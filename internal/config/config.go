// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port"`
}

// AuthConfig holds the catalog API credential.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// CatalogConfig configures the product API client.
type CatalogConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// RefreshConfig sets the scheduler cadence.
type RefreshConfig struct {
	UpdateIntervalSeconds int `mapstructure:"update_interval_seconds"`
	RetryIntervalSeconds  int `mapstructure:"retry_interval_seconds"`
}

// TemplatesConfig locates the on-disk page templates.
type TemplatesConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The short forms predate the structured keys and stay supported.
	bindings := map[string][]string{
		"auth.api_key": {"APK_AUTH_API_KEY", "APK_API_KEY"},
		"server.port":  {"APK_SERVER_PORT", "APK_PORT"},
		"server.addr":  {"APK_SERVER_ADDR", "APK_ADDR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1")
	v.SetDefault("server.port", 3030)
	v.SetDefault("catalog.base_url", "https://api-extern.systembolaget.se")
	v.SetDefault("catalog.timeout_seconds", 15)
	v.SetDefault("catalog.max_retries", 2)
	v.SetDefault("catalog.backoff_initial_ms", 250)
	v.SetDefault("catalog.backoff_max_ms", 2000)
	v.SetDefault("refresh.update_interval_seconds", 7200)
	v.SetDefault("refresh.retry_interval_seconds", 5)
	v.SetDefault("templates.dir", "templates")
	v.SetDefault("templates.watch", true)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits. A missing API
// key is a startup error: the service cannot fetch anything without one.
func (c Config) Validate() error {
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required (set APK_API_KEY)")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return fmt.Errorf("catalog.timeout_seconds must be > 0")
	}
	if c.Refresh.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("refresh.update_interval_seconds must be > 0")
	}
	if c.Refresh.RetryIntervalSeconds <= 0 {
		return fmt.Errorf("refresh.retry_interval_seconds must be > 0")
	}
	return nil
}

// ListenAddr joins the configured address and port.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Addr, strconv.Itoa(c.Server.Port))
}

// UpdateInterval is the scheduler wait after a successful refresh.
func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.Refresh.UpdateIntervalSeconds) * time.Second
}

// RetryInterval is the scheduler wait after a failed refresh.
func (c Config) RetryInterval() time.Duration {
	return time.Duration(c.Refresh.RetryIntervalSeconds) * time.Second
}

// CatalogTimeout is the per-request catalog HTTP timeout.
func (c Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// BackoffInitial is the first retry delay of the catalog client.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.Catalog.BackoffInitialMs) * time.Millisecond
}

// BackoffMax caps the catalog client retry delay.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.Catalog.BackoffMaxMs) * time.Millisecond
}
