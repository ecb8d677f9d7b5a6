package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/quizstat/internal/catalog"
	"github.com/verte-zerg/quizstat/internal/config"
	"github.com/verte-zerg/quizstat/internal/generator"
	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/stats"
	"github.com/verte-zerg/quizstat/internal/statsui"
	"github.com/verte-zerg/quizstat/internal/store"
	"github.com/verte-zerg/quizstat/internal/tui"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import users, topics and past sessions from a TOML or YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(args[0])
	if err != nil {
		return err
	}
	be, _, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	summary, err := catalog.Import(cmd.Context(), be, cat)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out,
		"Imported %d users, %d topics, %d tests, %d questions, %d sessions (%d records)\n",
		summary.Users, summary.Topics, summary.Tests, summary.Questions, summary.Sessions, summary.Records); err != nil {
		return err
	}
	if summary.Skipped > 0 {
		_, err = fmt.Fprintf(out, "Skipped %d sessions already stored\n", summary.Skipped)
	}
	return err
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics and their tests",
		Args:  cobra.NoArgs,
		RunE:  runTopics,
	}
}

func runTopics(cmd *cobra.Command, _ []string) error {
	be, _, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	ctx := cmd.Context()
	topics, err := be.ListTopics(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(topics) == 0 {
		_, err := fmt.Fprintln(out, "No topics.")
		return err
	}
	for _, t := range topics {
		topic, err := be.FindTopicByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%d  %s\n", topic.ID, topic.Name); err != nil {
			return err
		}
		for _, test := range topic.Tests {
			if _, err := fmt.Fprintf(out, "    %d  %s (%d questions)\n", test.ID, test.Name, len(test.Questions)); err != nil {
				return err
			}
		}
	}
	return nil
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <login>",
		Short: "Show per-test statistics of a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runUser,
	}
}

func runUser(cmd *cobra.Command, args []string) error {
	be, svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	user, err := findUser(cmd, be, args[0])
	if err != nil {
		return err
	}
	us, err := svc.UserStatistics(cmd.Context(), user)
	if err != nil {
		return err
	}
	return stats.RenderUserStatistics(cmd.OutOrStdout(), us)
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history <login>",
		Short: "Show the session history of a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the trend line")
	return historyCmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	be, svc, fileCfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)
	applyIntConfig(cmd, "curve-window", &historyCurveWindow, fileCfg.Report.CurveWindow)
	if historyCurveWindow <= 0 {
		return fmt.Errorf("curve-window must be > 0")
	}

	user, err := findUser(cmd, be, args[0])
	if err != nil {
		return err
	}
	history, err := svc.SessionHistory(cmd.Context(), user)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return stats.RenderHistory(out, history, historyCurveWindow, terminalWidth(out))
}

func newTopicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topic <id>",
		Short: "Show per-test statistics of a topic",
		Args:  cobra.ExactArgs(1),
		RunE:  runTopic,
	}
}

func runTopic(cmd *cobra.Command, args []string) error {
	topicID, err := parseID(args[0])
	if err != nil {
		return err
	}
	be, svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	topic, tests, err := svc.TopicReport(cmd.Context(), topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("topic %d not found", topicID)
		}
		return err
	}
	return stats.RenderTopicStatistics(cmd.OutOrStdout(), topic.Name, tests)
}

func newTakeCmd() *cobra.Command {
	takeCmd := &cobra.Command{
		Use:   "take <login> <test-id>",
		Short: "Take a test interactively and record the answers",
		Args:  cobra.ExactArgs(2),
		RunE:  runTake,
	}
	takeCmd.Flags().BoolVar(&takeShuffle, "shuffle", defaultShuffle, "shuffle question order")
	takeCmd.Flags().BoolVar(&takeShuffleAnswers, "shuffle-answers", defaultShuffleAnswer, "shuffle answer options")
	takeCmd.Flags().IntVar(&takeMaxQuestions, "max-questions", 0, "limit the number of questions (0 = all)")
	return takeCmd
}

func runTake(cmd *cobra.Command, args []string) error {
	testID, err := parseID(args[1])
	if err != nil {
		return err
	}
	be, svc, fileCfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)
	applyBoolConfig(cmd, "shuffle", &takeShuffle, fileCfg.Quiz.Shuffle)
	applyBoolConfig(cmd, "shuffle-answers", &takeShuffleAnswers, fileCfg.Quiz.ShuffleAnswers)
	applyIntConfig(cmd, "max-questions", &takeMaxQuestions, fileCfg.Quiz.MaxQuestions)
	if takeMaxQuestions < 0 {
		return fmt.Errorf("max-questions must be >= 0")
	}

	ctx := cmd.Context()
	user, err := findUser(cmd, be, args[0])
	if err != nil {
		return err
	}
	test, err := be.FindTestByID(ctx, testID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("test %d not found", testID)
		}
		return err
	}
	if len(test.Questions) == 0 {
		return fmt.Errorf("test %q has no questions", test.Name)
	}
	test = generator.New().Prepare(test, model.QuizConfig{
		Shuffle:        takeShuffle,
		ShuffleAnswers: takeShuffleAnswers,
		MaxQuestions:   takeMaxQuestions,
	})

	history, err := svc.SessionHistory(ctx, user)
	if err != nil {
		logErrf("failed to load history: %v\n", err)
		history = nil
	}

	quiz := tui.NewModel(ctx, svc, user, test, history)
	program := tea.NewProgram(quiz, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run quiz: %w", err)
	}
	if !quiz.Done() {
		logErrln("Quiz aborted, nothing saved.")
		return nil
	}
	records := quiz.Records()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d correct (%d%%)\n",
		test.Name, stats.CalculateRightAnswers(records), len(records), quiz.Score())
	return err
}

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse statistics in an interactive dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	statsCmd.Flags().StringVar(&statsUser, "user", "", "login to show user statistics for")
	statsCmd.Flags().Int64Var(&statsTopic, "topic", 0, "topic id to show test statistics for")
	statsCmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the trend line")
	return statsCmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	be, svc, fileCfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Report.CurveWindow)
	if statsCurveWindow <= 0 {
		return fmt.Errorf("curve-window must be > 0")
	}
	if statsTopic < 0 {
		return fmt.Errorf("topic must be > 0")
	}

	cfg := model.StatsConfig{
		Login:       strings.TrimSpace(statsUser),
		TopicID:     statsTopic,
		Attempts:    svc.Policy(),
		CurveWindow: statsCurveWindow,
	}
	program := tea.NewProgram(statsui.NewModel(cmd.Context(), svc, be, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats ui: %w", err)
	}
	return nil
}

func newClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored answer records",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
	clearCmd.Flags().StringVar(&clearUser, "user", "", "delete the records of this login")
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "delete every record")
	return clearCmd
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := validateClearFlags(clearUser, clearAll); err != nil {
		return err
	}
	be, svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if clearAll {
		if err := svc.DeleteAll(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "Deleted all records.")
		return err
	}
	user, err := findUser(cmd, be, clearUser)
	if err != nil {
		return err
	}
	if err := svc.RemoveStatisticsByUser(ctx, user.ID); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Deleted records of %s.\n", user.Login)
	return err
}

func validateClearFlags(user string, all bool) error {
	user = strings.TrimSpace(user)
	if user == "" && !all {
		return fmt.Errorf("either --user or --all is required")
	}
	if user != "" && all {
		return fmt.Errorf("--user and --all are mutually exclusive")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Open the config file in $EDITOR",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file with defaults unless it exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func findUser(cmd *cobra.Command, be backend, login string) (model.User, error) {
	user, err := be.FindUserByLogin(cmd.Context(), strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, fmt.Errorf("user %q not found", login)
		}
		return model.User{}, err
	}
	return user, nil
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
