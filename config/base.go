package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"stanbot/internal/quotes"
)

// PathEnv names the variable pointing at an optional YAML config file.
// Environment variables override values read from the file.
const PathEnv = "CONFIG_PATH"

type ServerConfig struct {
	Server `yaml:"server"`
	Pow    `yaml:"pow"`
	Quotes []string `yaml:"quotes" env:"QUOTES" env-separator:"|"`
}

type ClientConfig struct {
	Client `yaml:"client"`
}

func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	if cfg.Quotes == nil {
		cfg.Quotes = quotes.Default
	}
	return cfg, nil
}

func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(cfg interface{}) error {
	var err error
	if path := os.Getenv(PathEnv); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}
