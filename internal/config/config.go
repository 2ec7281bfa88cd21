package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"warn"`
	FirstPlayer string    `yaml:"first-player" env:"FIRST_PLAYER" env-default:"X"`
	PlainOutput bool      `yaml:"plain-output" env:"PLAIN_OUTPUT" env-default:"false"`
	History     History   `yaml:"history"`
	Telemetry   Telemetry `yaml:"telemetry"`
}

type History struct {
	Enabled bool  `yaml:"enabled" env:"HISTORY_ENABLED" env-default:"false"`
	Redis   Redis `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Telemetry struct {
	Endpoint       string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tictactoe"`
	ServiceVersion string `yaml:"service-version" env-default:"0.1.0"`
}

// MustLoad - loads the config file at path, falling back to environment
// variables and defaults when the file does not exist.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
