package config

import (
	"errors"
	"fmt"
)

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Engine.DefaultPositionLimit <= 0 {
		return errors.New("engine.defaultPositionLimit must be > 0")
	}
	for sym, limit := range cfg.Engine.PositionLimits {
		if limit <= 0 {
			return fmt.Errorf("symbol %s positionLimit must be > 0", sym)
		}
	}
	if cfg.Server.ListenAddr == "" {
		return errors.New("server.listenAddr is required")
	}
	return nil
}
