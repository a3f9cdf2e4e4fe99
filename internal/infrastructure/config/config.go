package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Routing RoutingConfig `koanf:"routing"`
	LLM     LLMConfig     `koanf:"llm"`
	Redis   RedisConfig   `koanf:"redis"`
}

type RoutingConfig struct {
	MinimumScore float64       `koanf:"minimum_score"`
	Weights      WeightsConfig `koanf:"weights"`
	RuleCacheTTL time.Duration `koanf:"rule_cache_ttl"`
}

type WeightsConfig struct {
	Capacity    float64 `koanf:"capacity"`
	Performance float64 `koanf:"performance"`
	Geography   float64 `koanf:"geography"`
	PriceBand   float64 `koanf:"price_band"`
}

type LLMConfig struct {
	Enabled bool          `koanf:"enabled"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	MaxRetries   int           `koanf:"max_retries"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

func Load() (*Config, error) {
	return LoadFrom("configs/config.yaml")
}

// LoadFrom layers defaults, an optional YAML file, and LRE_ environment
// overrides, in that order.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Routing: RoutingConfig{
			MinimumScore: 0.6,
			Weights: WeightsConfig{
				Capacity:    0.35,
				Performance: 0.25,
				Geography:   0.20,
				PriceBand:   0.20,
			},
			RuleCacheTTL: 15 * time.Minute,
		},
		LLM: LLMConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
			Timeout: 20 * time.Second,
		},
		Redis: RedisConfig{
			URL:          "localhost:6379",
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	if err := k.Load(env.Provider("LRE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "LRE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
