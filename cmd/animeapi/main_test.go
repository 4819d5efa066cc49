package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"animeapi/internal/config"
	"animeapi/internal/link"
	"animeapi/internal/services"
	"animeapi/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("ANIMEAPI_ENV_FILE", "")
	for _, key := range []string{"DATA_DIR", "MANUAL_DIR", "OUTPUT_DIR", "STATE_DIR", "STORE_PATH", "REDIS_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv("ANIMEAPI_"+key, "")
	}
	t.Chdir(home)

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteFile(t, configPath, data)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}

	out, _, err = runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.DataDir)
}

func TestRunThenInspect(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteSampleDatasets(t, env.cfg)

	out, _, err := runCLI(t, env.configPath, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Inserts")
	requireContains(t, out, "Linked silveryasha")

	out, _, err = runCLI(t, env.configPath, "--json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if view.Records != 2 || view.Counts["shoboi"] != 1 || view.LastRun == nil || view.LastRun.Status != "succeeded" {
		t.Fatalf("unexpected status %+v", view)
	}

	out, _, err = runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status table: %v", err)
	}
	requireContains(t, out, "Succeeded")
	requireContains(t, out, "Pending KV changes: 2")

	out, _, err = runCLI(t, env.configPath, "lookup", "mal", "100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "Show A")
	requireContains(t, out, "shoboi")

	_, _, err = runCLI(t, env.configPath, "lookup", "mal", "999")
	if !errors.Is(err, services.ErrNotFound) || services.ExitCode(err) != services.ExitNoInput {
		t.Fatalf("expected not found, got %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "--json", "unlinked", "silveryasha")
	if err != nil {
		t.Fatalf("unlinked: %v", err)
	}
	var entries []link.Unlinked
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode unlinked: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "9" {
		t.Fatalf("unexpected unlinked entries %+v", entries)
	}

	_, _, err = runCLI(t, env.configPath, "unlinked", "crunchyroll")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunFailureNamesStage(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteSampleDatasets(t, env.cfg)
	if err := os.Remove(filepath.Join(env.cfg.Paths.DataDir, "arm.json")); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, env.configPath, "run")
	if err == nil {
		t.Fatal("expected run failure")
	}
	if got := describeFailure(err); !strings.HasPrefix(got, "load: read arm dataset") {
		t.Fatalf("unexpected failure line %q", got)
	}
	if services.ExitCode(err) != services.ExitNoInput {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}

	out, _, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Failed stage")
}

func TestDescribeFailure(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", cause, "disk full"},
		{"stage", services.Wrap(services.ErrPersistence, "apply", "apply changeset", "", cause), "apply: apply changeset: disk full"},
		{"marker only", services.Wrap(services.ErrTransient, "lock", "", "", nil), "lock: transient failure"},
		{"wrapped", fmt.Errorf("outer: %w", services.Wrap(services.ErrUpstream, "load", "read", "x.json", nil)), "load: read: x.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeFailure(tt.err); got != tt.want {
				t.Fatalf("describeFailure = %q, want %q", got, tt.want)
			}
		})
	}
}
