// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads adcat settings from defaults, an optional file and
// ADCAT_ prefixed environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/luxfi/adcat/pkg/analytics"
	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/exchange"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/pricing"
	"github.com/luxfi/adcat/pkg/storage"
)

// EnvPrefix prefixes every environment override, e.g. ADCAT_SERVER_ADDR
const EnvPrefix = "ADCAT"

// Config is the full process configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Billing BillingConfig
	Pricing pricing.Pricer
	Seed    []string
	Assets  AssetsConfig
	Log     log.Config
}

type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	Env         string
}

type StorageConfig struct {
	Backend storage.Backend
	Path    string
}

type BillingConfig struct {
	Period time.Duration
}

type AssetsConfig struct {
	AdImages string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.env", "development")

	v.SetDefault("storage.backend", string(storage.BackendPebble))
	v.SetDefault("storage.path", "data/adcat")

	v.SetDefault("billing.period", analytics.DefaultBillingPeriod.String())

	def := pricing.Default()
	v.SetDefault("pricing.prompt_per_1k", def.PromptPer1K.String())
	v.SetDefault("pricing.completion_per_1k", def.CompletionPer1K.String())

	v.SetDefault("catalog.seed", exchange.DefaultSeed)
	v.SetDefault("assets.ad_images", "ad_images")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	period, err := time.ParseDuration(v.GetString("billing.period"))
	if err != nil {
		return nil, errs.Invalid("billing.period: %v", err)
	}
	prompt, err := decimal.NewFromString(v.GetString("pricing.prompt_per_1k"))
	if err != nil {
		return nil, errs.Invalid("pricing.prompt_per_1k: %v", err)
	}
	completion, err := decimal.NewFromString(v.GetString("pricing.completion_per_1k"))
	if err != nil {
		return nil, errs.Invalid("pricing.completion_per_1k: %v", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: list(v.Get("server.cors_origins")),
			Env:         v.GetString("server.env"),
		},
		Storage: StorageConfig{
			Backend: storage.Backend(strings.ToLower(v.GetString("storage.backend"))),
			Path:    v.GetString("storage.path"),
		},
		Billing: BillingConfig{Period: period},
		Pricing: pricing.Pricer{PromptPer1K: prompt, CompletionPer1K: completion},
		Seed:    list(v.Get("catalog.seed")),
		Assets:  AssetsConfig{AdImages: v.GetString("assets.ad_images")},
		Log: log.Config{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// list reads a string list from a file (a sequence) or the environment
// (comma separated, since category names may contain spaces).
func list(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects settings the exchange cannot run with
func (c *Config) Validate() error {
	if c.Billing.Period <= 0 {
		return errs.Invalid("billing.period must be positive, got %s", c.Billing.Period)
	}
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case storage.BackendMemory:
	case storage.BackendPebble:
		if c.Storage.Path == "" {
			return errs.Invalid("storage.path is required for the pebble backend")
		}
	default:
		return errs.Invalid("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Server.Addr == "" {
		return errs.Invalid("server.addr is required")
	}
	return nil
}

// Exchange returns the business parameters for exchange.New
func (c *Config) Exchange() exchange.Config {
	return exchange.Config{
		BillingPeriod: c.Billing.Period,
		Pricer:        c.Pricing,
		Seed:          c.Seed,
	}
}
