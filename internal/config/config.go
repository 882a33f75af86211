// Package config reads the process configuration from the environment.
//
// Domain policy (VAT rate, approval threshold, currency) is not configured
// here, it lives in the settings table so that administrators can change it
// at runtime.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseDSN      string `envconfig:"DATABASE_DSN" default:"data/finance.db"`
	Port             int    `envconfig:"PORT" default:"8080"`
	GinMode          string `envconfig:"GIN_MODE" default:"release"`
	LogFormat        string `envconfig:"LOG_FORMAT"`
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS"`
	EnablePprof      bool   `envconfig:"ENABLE_PPROF" default:"false"`
}

// Load reads the configuration from a .env file (if present) and the
// environment. Environment variables take precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}
