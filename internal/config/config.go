// Package config loads and validates the process configuration.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `toml:"app"`
	Server  ServerConfig  `toml:"server"`
	Engine  EngineConfig  `toml:"engine"`
	Archive ArchiveConfig `toml:"archive"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EngineConfig supplies the account-level defaults applied to incoming
// orders that do not carry their own risk parameters. Percent values are
// of the invested amount; zero disables the optional ones.
type EngineConfig struct {
	StopOutPercent    float64 `toml:"stop_out_percent"`
	MarginCallPercent float64 `toml:"margin_call_percent"`
	ToppingUpPercent  float64 `toml:"topping_up_percent"`
	AutoToppingUp     bool    `toml:"auto_topping_up"`
	QueueSize         int     `toml:"queue_size"`
}

type ArchiveConfig struct {
	Path string `toml:"path"`
}

// Load reads the YAML config at path, fills in defaults and validates
// the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	applyDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StopOut returns the default stop-out threshold as a decimal.
func (e EngineConfig) StopOut() decimal.Decimal {
	return decimal.NewFromFloat(e.StopOutPercent)
}

// MarginCall returns the default margin-call threshold, nil when the
// feature is disabled.
func (e EngineConfig) MarginCall() *decimal.Decimal {
	if e.MarginCallPercent <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(e.MarginCallPercent)
	return &d
}

// ToppingUp returns the default topping-up percent, nil when disabled.
func (e EngineConfig) ToppingUp() *decimal.Decimal {
	if e.ToppingUpPercent <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(e.ToppingUpPercent)
	return &d
}
