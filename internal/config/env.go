package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvDB     = "QUIZSTAT_DB"
	EnvDriver = "QUIZSTAT_DRIVER"
	EnvDSN    = "QUIZSTAT_PG_DSN"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays QUIZSTAT_* variables on the storage section.
func ApplyEnv(cfg *FileConfig) {
	if v := os.Getenv(EnvDriver); v != "" {
		cfg.Storage.Driver = &v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Storage.Path = &v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Storage.DSN = &v
	}
}
