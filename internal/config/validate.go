package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDatasets(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateBatches(); err != nil {
		return err
	}
	if err := c.validateKV(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.data_dir":   c.Paths.DataDir,
		"paths.manual_dir": c.Paths.ManualDir,
		"paths.output_dir": c.Paths.OutputDir,
		"paths.state_dir":  c.Paths.StateDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateDatasets() error {
	for key, value := range map[string]string{
		"datasets.aod":         c.Datasets.AOD,
		"datasets.arm":         c.Datasets.ARM,
		"datasets.fribb":       c.Datasets.Fribb,
		"datasets.kaize":       c.Datasets.Kaize,
		"datasets.nautiljon":   c.Datasets.Nautiljon,
		"datasets.otakotaku":   c.Datasets.OtakOtaku,
		"datasets.silveryasha": c.Datasets.SilverYasha,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if len(c.Datasets.AniTrakt) == 0 {
		return errors.New("datasets.anitrakt must list at least one file")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Workers < 0 {
		return errors.New("matching.workers must be >= 0")
	}
	if c.Matching.EarlyExit < 1 || c.Matching.EarlyExit > 100 {
		return errors.New("matching.early_exit must be between 1 and 100")
	}
	platforms := make([]string, 0, len(c.Matching.Thresholds))
	for platform := range c.Matching.Thresholds {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	for _, platform := range platforms {
		if _, known := defaultThresholds[platform]; !known {
			return fmt.Errorf("matching.thresholds: unknown platform %q", platform)
		}
		if value := c.Matching.Thresholds[platform]; value < 1 || value > 100 {
			return fmt.Errorf("matching.thresholds.%s must be between 1 and 100", platform)
		}
	}
	return nil
}

func (c *Config) validateBatches() error {
	return ensurePositiveMap(map[string]int{
		"store.batch_size":   c.Store.BatchSize,
		"kv.batch_size":      c.KV.BatchSize,
		"kv.timeout_seconds": c.KV.TimeoutSeconds,
	})
}

func (c *Config) validateKV() error {
	if !c.KV.Enabled {
		return nil
	}
	if c.KV.RedisURL == "" {
		return errors.New("kv.redis_url must be set when kv.enabled is true (or set REDIS_URL)")
	}
	if !strings.HasPrefix(c.KV.RedisURL, "redis://") && !strings.HasPrefix(c.KV.RedisURL, "rediss://") && !strings.HasPrefix(c.KV.RedisURL, "unix://") {
		return fmt.Errorf("kv.redis_url: unsupported scheme in %q", c.KV.RedisURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
