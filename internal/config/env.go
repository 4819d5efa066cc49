package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "ANIMEAPI"

// envOverrides lists the settings that may come from ANIMEAPI_* variables.
// Empty values leave the file configuration untouched.
type envOverrides struct {
	DataDir   string `envconfig:"DATA_DIR"`
	ManualDir string `envconfig:"MANUAL_DIR"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
	StateDir  string `envconfig:"STATE_DIR"`
	StorePath string `envconfig:"STORE_PATH"`
	RedisURL  string `envconfig:"REDIS_URL"`
	KVEnabled *bool  `envconfig:"KV_ENABLED"`
	Workers   *int   `envconfig:"WORKERS"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// loadDotEnv reads ANIMEAPI_ENV_FILE, falling back to ./.env. Variables already
// present in the environment win over file values.
func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv(envPrefix + "_ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	setIfPresent(&c.Paths.DataDir, env.DataDir)
	setIfPresent(&c.Paths.ManualDir, env.ManualDir)
	setIfPresent(&c.Paths.OutputDir, env.OutputDir)
	setIfPresent(&c.Paths.StateDir, env.StateDir)
	setIfPresent(&c.Store.Path, env.StorePath)
	setIfPresent(&c.KV.RedisURL, env.RedisURL)
	setIfPresent(&c.Logging.Level, env.LogLevel)
	setIfPresent(&c.Logging.Format, env.LogFormat)
	if env.KVEnabled != nil {
		c.KV.Enabled = *env.KVEnabled
	}
	if env.Workers != nil {
		c.Matching.Workers = *env.Workers
	}
	return nil
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
