// Package main provides the CLI entrypoint for wtrack.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wtrack/internal/config"
	"github.com/verte-zerg/wtrack/internal/ingest"
	"github.com/verte-zerg/wtrack/internal/logging"
	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/stats"
	"github.com/verte-zerg/wtrack/internal/statsui"
	"github.com/verte-zerg/wtrack/internal/store"
)

const defaultLogLevel = "warn"

var (
	dbPath     string
	configPath string
	logLevel   string
	logFile    string

	fileCfg config.FileConfig

	plainOutput    bool
	analysisSince  string
	analysisWindow int
	analysisTarget float64
	analysisToday  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "wtrack",
		Short:             "Weight log analytics: weekly trends, seasonality and goal projection",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: loadSettings,
		RunE:              runStatsCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "TOML config path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")

	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, "print a plain-text report instead of the interactive viewer")
	addAnalysisFlags(rootCmd)

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newGymCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analysisSince, "since", "", "only use entries on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&analysisWindow, "window", stats.DefaultWindow, "moving average window in entries")
	cmd.Flags().Float64Var(&analysisTarget, "target", 0, "target weight in kg")
	cmd.Flags().StringVar(&analysisToday, "today", "", "reference date for goal projection (default: today)")
}

// loadSettings reads the config file and configures logging before any
// command runs.
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg

	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	jsonLogs := false
	if fileCfg.Log.JSON != nil {
		jsonLogs = *fileCfg.Log.JSON
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   config.ExpandHome(logFile),
		LogLevel:      logLevel,
		LogFormatJSON: jsonLogs,
	})
	logrus.WithFields(logrus.Fields{"db": dbPath, "config": configPath}).Debug("settings loaded")
	return nil
}

func analysisConfig(cmd *cobra.Command) (model.AnalysisConfig, error) {
	applyStringConfig(cmd, "since", &analysisSince, fileCfg.Analysis.Since)
	applyIntConfig(cmd, "window", &analysisWindow, fileCfg.Analysis.Window)
	applyFloatConfig(cmd, "target", &analysisTarget, fileCfg.Analysis.Target)

	cfg := model.AnalysisConfig{Window: analysisWindow}
	if analysisWindow < 1 {
		return cfg, fmt.Errorf("--window must be >= 1")
	}
	if analysisTarget < 0 {
		return cfg, fmt.Errorf("--target must be > 0")
	}
	if analysisTarget > 0 {
		target := analysisTarget
		cfg.Target = &target
	}
	if strings.TrimSpace(analysisSince) != "" {
		since, err := ingest.ParseDate(analysisSince)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &since
	}
	today, err := parseDateOrToday(analysisToday)
	if err != nil {
		return cfg, fmt.Errorf("invalid --today value: %w", err)
	}
	cfg.Today = today
	return cfg, nil
}

func parseDateOrToday(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return model.Day(time.Now()), nil
	}
	return ingest.ParseDate(value)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logrus.Warnf("failed to close db: %v", err)
	}
}

func closeFile(path string, c io.Closer) {
	if err := c.Close(); err != nil {
		logrus.Debugf("failed to close %s: %v", path, err)
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if plainOutput {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := stats.RenderReport(cmd.OutOrStdout(), report, stats.RenderOptions{Width: terminalWidth()}); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	ui := statsui.NewModel(st, cfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func printf(cmd *cobra.Command, format string, args ...any) {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		logrus.Debugf("write output: %v", err)
	}
}
