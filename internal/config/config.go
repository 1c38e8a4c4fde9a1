// Package config loads the bridge's layered configuration: defaults, then an
// optional TOML file, then SKG_-prefixed environment variables. No CLI flag
// overrides an individual key; the CLI only passes the file path.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/skg-bridge/errors"
)

// Config is the full configuration surface from spec.md §6.
type Config struct {
	NATSURL      string `mapstructure:"nats_url"`
	MemgraphHost string `mapstructure:"memgraph_host"`
	MemgraphPort int    `mapstructure:"memgraph_port"`

	RollingWindowSeconds  int `mapstructure:"rolling_window_seconds"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds"`
	MaxCleanupTimeMS      int `mapstructure:"max_cleanup_time_ms"`

	BatchIntervalMS int `mapstructure:"batch_interval_ms"`
	MaxBatchSize    int `mapstructure:"max_batch_size"`

	ConnectionPoolSize  int `mapstructure:"connection_pool_size"`
	ConnectionTimeoutMS int `mapstructure:"connection_timeout_ms"`
	QueryTimeoutMS      int `mapstructure:"query_timeout_ms"`

	// Legacy tick-based TTL fields. Parsed for backward compatibility per
	// spec.md §9; intentionally never read by internal/ttl.
	LegacyTickTTLEnabled bool `mapstructure:"legacy_tick_ttl_enabled"`
	LegacyTickWindow     int  `mapstructure:"legacy_tick_window"`

	VenueID string `mapstructure:"venue_id"`
}

// RollingWindow returns the TTL cutoff duration.
func (c Config) RollingWindow() time.Duration {
	return time.Duration(c.RollingWindowSeconds) * time.Second
}

// CleanupInterval returns the sweep cadence.
func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// BatchInterval returns the batch loop period.
func (c Config) BatchInterval() time.Duration {
	return time.Duration(c.BatchIntervalMS) * time.Millisecond
}

func defaults(v *viper.Viper) {
	v.SetDefault("nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("memgraph_host", "127.0.0.1")
	v.SetDefault("memgraph_port", 7687)

	v.SetDefault("rolling_window_seconds", 30)
	v.SetDefault("cleanup_interval_seconds", 1)
	v.SetDefault("max_cleanup_time_ms", 50)

	v.SetDefault("batch_interval_ms", 5)
	v.SetDefault("max_batch_size", 200)

	v.SetDefault("connection_pool_size", 15)
	v.SetDefault("connection_timeout_ms", 5000)
	v.SetDefault("query_timeout_ms", 10000)

	v.SetDefault("legacy_tick_ttl_enabled", false)
	v.SetDefault("legacy_tick_window", 0)

	v.SetDefault("venue_id", "default-venue")
}

// Load reads configuration from an optional TOML file at path (skipped if
// empty or missing), then SKG_-prefixed environment variables, applying
// defaults for anything unset.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("SKG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return Config{}, errors.Wrapf(err, "loading config from %s", path)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}
