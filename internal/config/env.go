package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the environment of the broadcast server.
type ServerConfig struct {
	Addr       string        `env:"TOUCHE_ADDR" envDefault:"127.0.0.1:8000"`
	RoundDelay time.Duration `env:"TOUCHE_ROUND_DELAY" envDefault:"1s"`
	BoutPause  time.Duration `env:"TOUCHE_BOUT_PAUSE" envDefault:"3s"`
	// Seed of the first bout; zero draws one at startup.
	Seed uint64 `env:"TOUCHE_SEED" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerConfig reads ServerConfig from the environment.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	if cfg.RoundDelay < 0 || cfg.BoutPause < 0 {
		return ServerConfig{}, fmt.Errorf("parse env: delays must not be negative")
	}
	return cfg, nil
}
