package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.Storage.Driver != nil || cfg.Report.Attempts != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
driver = "postgres"
dsn = "postgres://localhost/quiz"

[report]
attempts = "max"
curve-window = 3

[quiz]
shuffle = false
max-questions = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver == nil || *cfg.Storage.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %v", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != nil {
		t.Fatalf("expected unset path, got %q", *cfg.Storage.Path)
	}
	if cfg.Report.Attempts == nil || *cfg.Report.Attempts != "max" {
		t.Fatalf("expected max attempts, got %v", cfg.Report.Attempts)
	}
	if cfg.Report.CurveWindow == nil || *cfg.Report.CurveWindow != 3 {
		t.Fatalf("expected curve window 3, got %v", cfg.Report.CurveWindow)
	}
	if cfg.Quiz.Shuffle == nil || *cfg.Quiz.Shuffle {
		t.Fatalf("expected shuffle=false, got %v", cfg.Quiz.Shuffle)
	}
	if cfg.Quiz.MaxQuestions == nil || *cfg.Quiz.MaxQuestions != 10 {
		t.Fatalf("expected max-questions 10, got %v", cfg.Quiz.MaxQuestions)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[report]\nwindow = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "report.window") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("expected template to decode, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	if got, want := DefaultConfigPath(), filepath.Join(dir, "cfg", "quizstat", "config.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultDBPath(), filepath.Join(dir, "data", "quizstat", "quizstat.db"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLoadDotEnvAndApplyEnv(t *testing.T) {
	t.Setenv(EnvDriver, "")
	t.Setenv(EnvDB, "/from/process.db")
	t.Setenv(EnvDSN, "")

	path := filepath.Join(t.TempDir(), ".env")
	content := "QUIZSTAT_DRIVER=postgres\nQUIZSTAT_DB=/from/dotenv.db\nQUIZSTAT_PG_DSN=postgres://db/quiz\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// Load skips variables already present, so clear the empty ones first.
	if err := os.Unsetenv(EnvDriver); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	if err := os.Unsetenv(EnvDSN); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}

	driver := "sqlite"
	cfg := FileConfig{Storage: StorageConfig{Driver: &driver}}
	ApplyEnv(&cfg)
	if *cfg.Storage.Driver != "postgres" {
		t.Fatalf("expected env driver, got %s", *cfg.Storage.Driver)
	}
	if *cfg.Storage.Path != "/from/process.db" {
		t.Fatalf("expected process env to win over .env, got %s", *cfg.Storage.Path)
	}
	if *cfg.Storage.DSN != "postgres://db/quiz" {
		t.Fatalf("expected dsn from .env, got %s", *cfg.Storage.DSN)
	}
}
