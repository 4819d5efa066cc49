package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDatasets()
	c.normalizeMatching()
	c.normalizeKV()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.ManualDir, err = expandPath(c.Paths.ManualDir); err != nil {
		return fmt.Errorf("paths.manual_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.StateDir, defaultStoreFile)
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeDatasets() {
	trim := func(value *string) { *value = strings.TrimSpace(*value) }
	trim(&c.Datasets.AOD)
	trim(&c.Datasets.ARM)
	trim(&c.Datasets.Fribb)
	trim(&c.Datasets.Kaize)
	trim(&c.Datasets.Nautiljon)
	trim(&c.Datasets.OtakOtaku)
	trim(&c.Datasets.SilverYasha)
	files := c.Datasets.AniTrakt[:0]
	for _, name := range c.Datasets.AniTrakt {
		if name = strings.TrimSpace(name); name != "" {
			files = append(files, name)
		}
	}
	c.Datasets.AniTrakt = files
}

func (c *Config) normalizeMatching() {
	if c.Matching.Thresholds == nil {
		c.Matching.Thresholds = map[string]int{}
	}
	normalized := make(map[string]int, len(c.Matching.Thresholds))
	for platform, value := range c.Matching.Thresholds {
		normalized[strings.ToLower(strings.TrimSpace(platform))] = value
	}
	for platform, value := range defaultThresholds {
		if _, ok := normalized[platform]; !ok {
			normalized[platform] = value
		}
	}
	c.Matching.Thresholds = normalized
	if c.Matching.EarlyExit == 0 {
		c.Matching.EarlyExit = defaultEarlyExit
	}
}

func (c *Config) normalizeKV() {
	if strings.TrimSpace(c.KV.RedisURL) == "" {
		if value, ok := os.LookupEnv("REDIS_URL"); ok {
			c.KV.RedisURL = value
		}
	}
	c.KV.RedisURL = strings.TrimSpace(c.KV.RedisURL)
	c.KV.KeyPrefix = strings.TrimSpace(c.KV.KeyPrefix)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
