package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories the pipeline reads from and writes to.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	ManualDir string `toml:"manual_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Datasets names the upstream files inside Paths.DataDir.
type Datasets struct {
	AOD         string   `toml:"aod"`
	ARM         string   `toml:"arm"`
	AniTrakt    []string `toml:"anitrakt"`
	Fribb       string   `toml:"fribb"`
	Kaize       string   `toml:"kaize"`
	Nautiljon   string   `toml:"nautiljon"`
	OtakOtaku   string   `toml:"otakotaku"`
	SilverYasha string   `toml:"silveryasha"`
}

// Matching tunes the fuzzy linker.
type Matching struct {
	// Workers bounds the fuzzy fan-out. Zero means one per CPU.
	Workers    int            `toml:"workers"`
	EarlyExit  int            `toml:"early_exit"`
	Thresholds map[string]int `toml:"thresholds"`
}

// Store contains configuration for the persisted snapshot.
type Store struct {
	Path      string `toml:"path"`
	BatchSize int    `toml:"batch_size"`
}

// KV contains configuration for the downstream key-value sync.
type KV struct {
	Enabled        bool   `toml:"enabled"`
	RedisURL       string `toml:"redis_url"`
	KeyPrefix      string `toml:"key_prefix"`
	BatchSize      int    `toml:"batch_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for animeapi.
//
// Configuration sections by subsystem:
//   - Paths: upstream data, manual overrides, outputs, and state
//   - Datasets: file names of each upstream dataset
//   - Matching: fuzzy linker thresholds and worker bound
//   - Store: SQLite snapshot location and write batch size
//   - KV: Redis target for the downstream sync
//   - Metrics: optional Prometheus textfile
//   - Logging: log format, level, and file
type Config struct {
	Paths    Paths    `toml:"paths"`
	Datasets Datasets `toml:"datasets"`
	Matching Matching `toml:"matching"`
	Store    Store    `toml:"store"`
	KV       KV       `toml:"kv"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides (including a .env file) are applied after the file is decoded.
// The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("animeapi.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the writable directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, filepath.Dir(c.Store.Path)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatasetPath joins a dataset file name onto the data directory.
func (c *Config) DatasetPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// ManualPath returns the manual override file for a platform.
func (c *Config) ManualPath(platform string) string {
	return filepath.Join(c.Paths.ManualDir, platform+"_manual.json")
}

// UnlinkedPath returns the review file for entries a platform could not link.
func (c *Config) UnlinkedPath(platform string) string {
	return filepath.Join(c.Paths.OutputDir, platform+"_unlinked.json")
}

// StatusPath returns the location of the run summary file.
func (c *Config) StatusPath() string {
	return filepath.Join(c.Paths.OutputDir, "status.json")
}

// LockPath returns the run-level lock file guarding the store.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "animeapi.lock")
}

// Threshold returns the configured similarity threshold for a platform.
func (c *Config) Threshold(platform string) int {
	if value, ok := c.Matching.Thresholds[platform]; ok {
		return value
	}
	return defaultThresholds[platform]
}

// MatchWorkers returns the effective fuzzy worker bound.
func (c *Config) MatchWorkers() int {
	if c.Matching.Workers > 0 {
		return c.Matching.Workers
	}
	return runtime.NumCPU()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
