package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quote-engine-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env    string        `yaml:"env"`
	Engine EngineConfig  `yaml:"engine"`
	Server ServerConfig  `yaml:"server"`
	Log    logger.Config `yaml:"log"`
}

// EngineConfig 决策引擎参数。
type EngineConfig struct {
	// DefaultPositionLimit 首次见到合约时的仓位上限。
	DefaultPositionLimit int `yaml:"defaultPositionLimit"`
	// PositionLimits 每合约上限覆盖，优先于默认值与 blob 中的记录。
	PositionLimits map[string]int `yaml:"positionLimits"`
}

type ServerConfig struct {
	ListenAddr  string `yaml:"listenAddr"`
	MetricsAddr string `yaml:"metricsAddr"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("QE_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("QE_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	return cfg, Validate(cfg)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Engine.DefaultPositionLimit == 0 {
		cfg.Engine.DefaultPositionLimit = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log = logger.DefaultConfig()
	}
}
