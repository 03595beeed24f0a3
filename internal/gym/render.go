package gym

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/stats"
)

const dateLayout = "2006-01-02"

// SessionRows formats summaries as table rows.
func SessionRows(sessions []model.ExerciseSessionSummary) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Date.Format(dateLayout),
			strconv.Itoa(s.SetCount),
			fmt.Sprintf("%.1f", s.TotalVolume),
			fmt.Sprintf("%.1f", s.AvgVolumePerSet),
			fmt.Sprintf("%.1f", s.MaxWeight),
			fmt.Sprintf("%.1f", s.AvgRepsPerSet),
		})
	}
	return rows
}

// ProgressSeries returns the plotted per-session metrics.
func ProgressSeries(sessions []model.ExerciseSessionSummary) []stats.Series {
	volume := make([]float64, len(sessions))
	weight := make([]float64, len(sessions))
	reps := make([]float64, len(sessions))
	for i, s := range sessions {
		volume[i] = s.AvgVolumePerSet
		weight[i] = s.MaxWeight
		reps[i] = s.AvgRepsPerSet
	}
	return []stats.Series{
		{Name: "avg vol/set", Values: volume},
		{Name: "max weight", Values: weight},
		{Name: "avg reps/set", Values: reps},
	}
}

// RenderExercise writes the session table and, with two or more sessions,
// a progression plot for one exercise.
func RenderExercise(w io.Writer, h ExerciseHistory, width, plotHeight int) error {
	if _, err := fmt.Fprintf(w, "%s\n", h.Exercise); err != nil {
		return err
	}
	if len(h.Sessions) == 0 {
		_, err := fmt.Fprintf(w, "No data available for %s in the selected range.\n\n", h.Exercise)
		return err
	}
	headers := []string{"Date", "Sets", "Volume", "Avg vol/set", "Max weight", "Avg reps"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range stats.FormatTable(headers, SessionRows(h.Sessions), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if len(h.Sessions) < 2 {
		return nil
	}
	return stats.PlotWithOptions(w, "", ProgressSeries(h.Sessions), stats.PlotOptions{
		Width:      width,
		Height:     plotHeight,
		StartLabel: h.Sessions[0].Date.Format(dateLayout),
		EndLabel:   h.Sessions[len(h.Sessions)-1].Date.Format(dateLayout),
	})
}

// RenderRoutine writes every routine day and its exercises.
func RenderRoutine(w io.Writer, days []DayHistory, width, plotHeight int) error {
	for _, day := range days {
		if _, err := fmt.Fprintf(w, "== %s ==\n", day.Label); err != nil {
			return err
		}
		for _, h := range day.Exercises {
			if err := RenderExercise(w, h, width, plotHeight); err != nil {
				return err
			}
		}
	}
	return nil
}
