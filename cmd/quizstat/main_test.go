package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/quizstat/internal/config"
)

const testCatalog = `[[users]]
first-name = "Ada"
last-name = "Lovelace"
login = "ada"

[[topics]]
name = "Go"

[[topics.tests]]
name = "Basics"

[[topics.tests.questions]]
text = "Zero value of an int?"
answers = [{ text = "0", correct = true }, { text = "nil" }]

[[topics.tests.questions]]
text = "Are strings mutable?"
answers = [{ text = "yes" }, { text = "no", correct = true }]

[[sessions]]
login = "ada"
topic = "Go"
test = "Basics"
date = 2024-03-01T10:00:00Z
results = [true, false]

[[sessions]]
login = "ada"
topic = "Go"
test = "Basics"
date = 2024-03-02T10:00:00Z
results = [true, true]
`

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(config.EnvDB, "")
	t.Setenv(config.EnvDriver, "")
	t.Setenv(config.EnvDSN, "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenReport(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "quiz.db")
	catPath := filepath.Join(dir, "catalog.toml")
	if err := os.WriteFile(catPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	out, err := runCLI(t, "import", "--db", dbPath, catPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "1 users, 1 topics, 1 tests, 2 questions, 2 sessions (4 records)") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCLI(t, "import", "--db", dbPath, catPath)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out, "Skipped 2 sessions already stored") {
		t.Fatalf("expected skipped sessions, got %q", out)
	}

	out, err = runCLI(t, "user", "--db", dbPath, "ada")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if !strings.Contains(out, "Basics") || !strings.Contains(out, "ada") {
		t.Fatalf("unexpected user output %q", out)
	}

	out, err = runCLI(t, "topics", "--db", dbPath)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if !strings.Contains(out, "Go") || !strings.Contains(out, "Basics (2 questions)") {
		t.Fatalf("unexpected topics output %q", out)
	}

	out, err = runCLI(t, "history", "--db", dbPath, "ada")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Trend:") {
		t.Fatalf("expected trend line, got %q", out)
	}

	out, err = runCLI(t, "clear", "--db", dbPath, "--user", "ada")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "Deleted records of ada.") {
		t.Fatalf("unexpected clear output %q", out)
	}
}

func TestUnknownUser(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "quiz.db")
	_, err := runCLI(t, "user", "--db", dbPath, "nobody")
	if err == nil || !strings.Contains(err.Error(), `user "nobody" not found`) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUnknownDriver(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, "topics", "--driver", "mysql")
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestPostgresRequiresDSN(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, "topics", "--driver", "postgres", "--dsn", "")
	if err == nil || !strings.Contains(err.Error(), "--dsn") {
		t.Fatalf("expected dsn error, got %v", err)
	}
}

func TestValidateClearFlags(t *testing.T) {
	if err := validateClearFlags("", false); err == nil {
		t.Fatalf("expected error without flags")
	}
	if err := validateClearFlags("ada", true); err == nil {
		t.Fatalf("expected error for both flags")
	}
	if err := validateClearFlags("ada", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateClearFlags("", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, bad := range []string{"0", "-1", "x"} {
		if _, err := parseID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestApplyConfigHelpers(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var (
		name    string
		count   int
		enabled bool
	)
	cmd.Flags().StringVar(&name, "name", "flag", "")
	cmd.Flags().IntVar(&count, "count", 1, "")
	cmd.Flags().BoolVar(&enabled, "enabled", false, "")

	fileName := "file"
	fileCount := 7
	fileEnabled := true
	applyStringConfig(cmd, "name", &name, &fileName)
	applyIntConfig(cmd, "count", &count, &fileCount)
	applyBoolConfig(cmd, "enabled", &enabled, &fileEnabled)
	if name != "file" || count != 7 || !enabled {
		t.Fatalf("expected file values, got %q %d %v", name, count, enabled)
	}

	if err := cmd.Flags().Set("name", "explicit"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyStringConfig(cmd, "name", &name, &fileName)
	if name != "explicit" {
		t.Fatalf("expected flag to win, got %q", name)
	}
	applyIntConfig(cmd, "count", &count, nil)
	if count != 7 {
		t.Fatalf("expected nil config to keep value, got %d", count)
	}
}

func TestWriteConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizstat", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("load template: %v", err)
	}
	if err := os.WriteFile(path, []byte("# custom\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template again: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# custom\n" {
		t.Fatalf("expected existing file kept, got %q", data)
	}
}
