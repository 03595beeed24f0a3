package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/wtrack/internal/config"
	"github.com/verte-zerg/wtrack/internal/gym"
	"github.com/verte-zerg/wtrack/internal/ingest"
	"github.com/verte-zerg/wtrack/internal/model"
)

const (
	defaultTermWidth = 80
	gymPlotHeight    = 8
)

var (
	gymLogPath     string
	gymRoutinePath string
	gymFrom        string
	gymTo          string
	gymExercise    string
	gymList        bool
)

func newGymCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gym",
		Short: "Summarize training sessions from a FitNotes export",
		Args:  cobra.NoArgs,
		RunE:  runGymCmd,
	}
	cmd.Flags().StringVar(&gymLogPath, "log", "", "FitNotes CSV export to load (replaces stored sets)")
	cmd.Flags().StringVar(&gymRoutinePath, "routine", "", "routine file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&gymFrom, "from", "", "first day of the range (default: first session)")
	cmd.Flags().StringVar(&gymTo, "to", "", "last day of the range (default: today)")
	cmd.Flags().StringVar(&gymExercise, "exercise", "", "summarize a single exercise")
	cmd.Flags().BoolVar(&gymList, "list", false, "list exercise names found in the log")
	return cmd
}

func runGymCmd(cmd *cobra.Command, _ []string) error {
	applyStringConfig(cmd, "log", &gymLogPath, fileCfg.Gym.Log)
	applyStringConfig(cmd, "routine", &gymRoutinePath, fileCfg.Gym.Routine)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	var sets []model.ExerciseSet
	if gymLogPath != "" {
		sets, err = loadGymLog(config.ExpandHome(gymLogPath))
		if err != nil {
			return err
		}
		if err := st.ReplaceExerciseSets(ctx, sets); err != nil {
			return fmt.Errorf("failed to store exercise sets: %w", err)
		}
		logrus.WithFields(logrus.Fields{"file": gymLogPath, "sets": len(sets)}).Info("gym log loaded")
	} else {
		sets, err = st.ListExerciseSets(ctx)
		if err != nil {
			return fmt.Errorf("failed to load exercise sets: %w", err)
		}
	}
	if len(sets) == 0 {
		return fmt.Errorf("no exercise sets stored; pass --log with a FitNotes export")
	}

	from, to, err := gymRange(sets, gymFrom, gymTo, model.Day(time.Now()))
	if err != nil {
		return err
	}
	sets = gym.FilterByDateRange(sets, from, to)

	if gymList {
		for _, name := range gym.Exercises(sets) {
			printf(cmd, "%s\n", name)
		}
		return nil
	}

	width := terminalWidth()
	if gymExercise != "" {
		h := gym.ExerciseHistory{Exercise: gymExercise, Sessions: gym.Summarize(sets, gymExercise)}
		return gym.RenderExercise(cmd.OutOrStdout(), h, width, gymPlotHeight)
	}
	if gymRoutinePath == "" {
		return fmt.Errorf("pass --exercise, --routine or --list")
	}
	routine, err := loadRoutine(config.ExpandHome(gymRoutinePath))
	if err != nil {
		return err
	}
	return gym.RenderRoutine(cmd.OutOrStdout(), gym.SummarizeRoutine(sets, routine), width, gymPlotHeight)
}

// gymRange resolves the --from/--to window. An omitted --from starts at the
// first session; an omitted --to ends at the later of today and the start.
func gymRange(sets []model.ExerciseSet, fromValue, toValue string, today time.Time) (time.Time, time.Time, error) {
	from := sets[0].Date
	for _, s := range sets {
		if s.Date.Before(from) {
			from = s.Date
		}
	}
	to := today
	if strings.TrimSpace(fromValue) != "" {
		parsed, err := ingest.ParseDate(fromValue)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from value: %w", err)
		}
		from = parsed
	}
	if to.Before(from) {
		to = from
	}
	if strings.TrimSpace(toValue) != "" {
		parsed, err := ingest.ParseDate(toValue)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to value: %w", err)
		}
		to = parsed
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("--to must not be before --from")
	}
	return from, to, nil
}

func loadGymLog(path string) ([]model.ExerciseSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer closeFile(path, file)
	sets, err := ingest.ReadExerciseSets(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return sets, nil
}

func loadRoutine(path string) (model.Routine, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Routine{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer closeFile(path, file)
	routine, err := ingest.ReadRoutine(file, ingest.RoutineFormatFromPath(path))
	if err != nil {
		return model.Routine{}, fmt.Errorf("failed to read routine %s: %w", path, err)
	}
	return routine, nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}
