// Package main provides the CLI entrypoint for quizstat.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/quizstat/internal/catalog"
	"github.com/verte-zerg/quizstat/internal/config"
	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/pgstore"
	"github.com/verte-zerg/quizstat/internal/stats"
	"github.com/verte-zerg/quizstat/internal/store"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	defaultCurveWindow   = 5
	terminalWidthBackup  = 80
	defaultShuffle       = true
	defaultShuffleAnswer = true
)

var (
	globalDB       string
	globalDriver   string
	globalDSN      string
	globalAttempts string

	historyCurveWindow int

	statsUser        string
	statsTopic       int64
	statsCurveWindow int

	takeShuffle        bool
	takeShuffleAnswers bool
	takeMaxQuestions   int

	clearUser string
	clearAll  bool
)

// backend is everything the CLI needs from a store.
type backend interface {
	stats.RecordStore
	catalog.Writer
	FindTestByID(ctx context.Context, testID int64) (model.Test, error)
	ListTopics(ctx context.Context) ([]model.Topic, error)
	Close() error
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quizstat",
		Short:         "Quiz results and statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&globalDB, "db", "", "SQLite database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&globalDriver, "driver", driverSQLite, "storage driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&globalDSN, "dsn", "", "Postgres connection string")
	rootCmd.PersistentFlags().StringVar(&globalAttempts, "attempts", string(model.AttemptsSum), "test attempt count policy: sum, max or last")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newTopicCmd())
	rootCmd.AddCommand(newTakeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings merges .env, the config file and flags into the global flag
// variables. Flags win over environment, environment over the file.
func loadSettings(cmd *cobra.Command) (config.FileConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(&fileCfg)
	applyStringConfig(cmd, "driver", &globalDriver, fileCfg.Storage.Driver)
	applyStringConfig(cmd, "db", &globalDB, fileCfg.Storage.Path)
	applyStringConfig(cmd, "dsn", &globalDSN, fileCfg.Storage.DSN)
	applyStringConfig(cmd, "attempts", &globalAttempts, fileCfg.Report.Attempts)
	return fileCfg, nil
}

// openService resolves settings and opens the configured backend.
func openService(cmd *cobra.Command) (backend, *stats.Service, config.FileConfig, error) {
	fileCfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, config.FileConfig{}, err
	}
	policy, err := stats.ParseAttemptPolicy(globalAttempts)
	if err != nil {
		return nil, nil, config.FileConfig{}, err
	}
	be, err := openBackend(cmd.Context(), globalDriver, globalDB, globalDSN)
	if err != nil {
		return nil, nil, config.FileConfig{}, err
	}
	return be, stats.NewService(be, policy), fileCfg, nil
}

func openBackend(ctx context.Context, driver, dbPath, dsn string) (backend, error) {
	switch driver {
	case "", driverSQLite:
		if dbPath == "" {
			dbPath = config.DefaultDBPath()
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	case driverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("--dsn (or %s) is required for the postgres driver", config.EnvDSN)
		}
		if ctx == nil {
			ctx = context.Background()
		}
		st, err := pgstore.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown driver %q (use sqlite or postgres)", driver)
	}
}

func closeBackend(be backend) {
	if cerr := be.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
