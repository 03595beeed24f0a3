package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/verte-zerg/wtrack/internal/config"
	"github.com/verte-zerg/wtrack/internal/generator"
	"github.com/verte-zerg/wtrack/internal/ingest"
	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/stats"
)

var (
	entryDate   string
	entryWeight float64

	importReplace     bool
	importSkipInvalid bool

	sampleDays    int
	sampleStart   string
	sampleWeight  float64
	sampleRate    float64
	sampleSeed    int64
	sampleReplace bool
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a weight entry",
		Args:  cobra.NoArgs,
		RunE:  runAddCmd,
	}
	cmd.Flags().StringVar(&entryDate, "date", "", "entry date (default: today)")
	cmd.Flags().Float64Var(&entryWeight, "weight", 0, "weight in kg")
	_ = cmd.MarkFlagRequired("weight")
	return cmd
}

func runAddCmd(cmd *cobra.Command, _ []string) error {
	date, err := parseDateOrToday(entryDate)
	if err != nil {
		return fmt.Errorf("invalid --date value: %w", err)
	}
	if entryWeight <= 0 {
		return fmt.Errorf("--weight must be > 0")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	obs := model.WeightObservation{Date: date, Weight: entryWeight}
	if err := st.AddWeight(context.Background(), obs); err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}
	printf(cmd, "Added %.1f kg on %s.\n", obs.Weight, date.Format(ingest.DateLayout))
	return nil
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every weight entry recorded on a date",
		Args:  cobra.NoArgs,
		RunE:  runDeleteCmd,
	}
	cmd.Flags().StringVar(&entryDate, "date", "", "entry date")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func runDeleteCmd(cmd *cobra.Command, _ []string) error {
	date, err := ingest.ParseDate(entryDate)
	if err != nil {
		return fmt.Errorf("invalid --date value: %w", err)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	removed, err := st.DeleteWeightsOn(context.Background(), date)
	if err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if removed == 0 {
		printf(cmd, "No entry found for that date.\n")
		return nil
	}
	printf(cmd, "Deleted %d entries on %s.\n", removed, date.Format(ingest.DateLayout))
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import weight entries from a CSV file with Date and Weight columns",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importReplace, "replace", false, "replace all stored entries instead of appending")
	cmd.Flags().BoolVar(&importSkipInvalid, "skip-invalid", false, "import valid rows and skip malformed ones")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	path := config.ExpandHome(args[0])
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer closeFile(path, file)

	var size int64 = -1
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("reading "+filepath.Base(path)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
	)

	obs, err := ingest.ReadWeights(io.TeeReader(file, bar))
	if finishErr := bar.Finish(); finishErr != nil {
		logrus.Debugf("failed to finish progress bar: %v", finishErr)
	}
	if err != nil {
		if errors.Is(err, ingest.ErrMissingColumn) || !importSkipInvalid {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		for _, rowErr := range multierr.Errors(err) {
			logrus.Warn(rowErr)
		}
		printf(cmd, "Skipped %d invalid rows.\n", len(multierr.Errors(err)))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if importReplace {
		err = st.ReplaceWeights(ctx, obs)
	} else {
		err = st.AppendWeights(ctx, obs)
	}
	if err != nil {
		return fmt.Errorf("failed to store entries: %w", err)
	}
	logrus.WithFields(logrus.Fields{"file": path, "rows": len(obs), "replace": importReplace}).Info("import finished")
	printf(cmd, "Imported %d entries.\n", len(obs))
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export weight entries as CSV (stdout when FILE is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ds, err := st.LoadDataset(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if len(args) == 0 {
		return ingest.WriteWeights(cmd.OutOrStdout(), ds.Observations)
	}
	path := config.ExpandHome(args[0])
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return ingest.WriteWeights(w, ds.Observations)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	printf(cmd, "Wrote %d entries to %s.\n", len(ds.Observations), path)
	return nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".wtrack-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := write(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Project the date a target weight will be reached",
		Args:  cobra.NoArgs,
		RunE:  runGoalCmd,
	}
	addAnalysisFlags(cmd)
	return cmd
}

func runGoalCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Target == nil {
		return fmt.Errorf("a target weight is required (--target or [analysis] target)")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if report.Empty() {
		printf(cmd, "No weight entries in the selected range.\n")
		return nil
	}
	return stats.RenderGoal(cmd.OutOrStdout(), report)
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Fill the database with a synthetic weight log",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}
	cmd.Flags().IntVar(&sampleDays, "days", 120, "number of days to generate")
	cmd.Flags().StringVar(&sampleStart, "start", "", "first day (default: --days before today)")
	cmd.Flags().Float64Var(&sampleWeight, "weight", 90, "starting weight in kg")
	cmd.Flags().Float64Var(&sampleRate, "rate", -0.5, "weekly drift in kg")
	cmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&sampleReplace, "replace", false, "replace all stored entries")
	return cmd
}

func runSampleCmd(cmd *cobra.Command, _ []string) error {
	if sampleDays < 1 {
		return fmt.Errorf("--days must be >= 1")
	}
	if sampleWeight <= 0 {
		return fmt.Errorf("--weight must be > 0")
	}
	start := model.Day(time.Now()).AddDate(0, 0, -sampleDays+1)
	if strings.TrimSpace(sampleStart) != "" {
		parsed, err := ingest.ParseDate(sampleStart)
		if err != nil {
			return fmt.Errorf("invalid --start value: %w", err)
		}
		start = parsed
	}

	obs := generator.New(sampleSeed).Weights(start, sampleDays, sampleWeight, sampleRate)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if sampleReplace {
		err = st.ReplaceWeights(ctx, obs)
	} else {
		err = st.AppendWeights(ctx, obs)
	}
	if err != nil {
		return fmt.Errorf("failed to store entries: %w", err)
	}
	printf(cmd, "Generated %d entries starting %s.\n", len(obs), start.Format(ingest.DateLayout))
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
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	editorCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}
