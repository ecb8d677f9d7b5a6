// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage StorageConfig `toml:"storage"`
	Report  ReportConfig  `toml:"report"`
	Quiz    QuizConfig    `toml:"quiz"`
}

// StorageConfig maps database settings.
type StorageConfig struct {
	Driver *string `toml:"driver"`
	Path   *string `toml:"path"`
	DSN    *string `toml:"dsn"`
}

// ReportConfig maps statistics report settings.
type ReportConfig struct {
	Attempts    *string `toml:"attempts"`
	CurveWindow *int    `toml:"curve-window"`
}

// QuizConfig maps quiz runner settings.
type QuizConfig struct {
	Shuffle        *bool `toml:"shuffle"`
	ShuffleAnswers *bool `toml:"shuffle-answers"`
	MaxQuestions   *int  `toml:"max-questions"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// DefaultConfigTemplate is written by `quizstat config` when no file exists.
const DefaultConfigTemplate = `# quizstat configuration

[storage]
# driver = "sqlite"       # sqlite or postgres
# path = ""               # SQLite file, defaults to the XDG data dir
# dsn = ""                # Postgres connection string

[report]
# attempts = "sum"        # sum, max or last
# curve-window = 5

[quiz]
# shuffle = true
# shuffle-answers = true
# max-questions = 0       # 0 asks every question
`
