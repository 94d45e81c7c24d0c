// Package config loads the gateway's runtime settings from an optional YAML
// file and the environment. Environment variables take precedence.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the gateway.
type Config struct {
	HTTPPort     int      `yaml:"PORT" envconfig:"PORT"`
	GRPCPort     int      `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	StoreURI     string   `yaml:"MONGO_URI" envconfig:"MONGO_URI"`
	KafkaBrokers []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `yaml:"KAFKA_TOPIC" envconfig:"KAFKA_TOPIC"`
	CORSOrigins  []string `yaml:"CORS_ORIGINS" envconfig:"CORS_ORIGINS"`
	LogLevel     string   `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL"`
}

// Default returns the settings used when neither file nor environment
// says otherwise.
func Default() Config {
	return Config{
		HTTPPort:    5000,
		StoreURI:    "mongodb://localhost:27017/companydir",
		KafkaTopic:  "company.events",
		CORSOrigins: []string{"*"},
		LogLevel:    "info",
	}
}

// Load starts from Default, overlays the YAML file named by CONFIG_FILE if
// set, then overlays environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.HTTPPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.StoreURI == "" {
		return fmt.Errorf("MONGO_URI must be provided")
	}
	return nil
}

// EventsEnabled reports whether change events should be published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
