package stats

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/store"
)

type failingSource struct{}

func (failingSource) LoadDataset(context.Context, *time.Time) (model.Dataset, error) {
	return model.Dataset{}, errors.New("boom")
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "wtrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	// Three ISO weeks of daily entries losing 0.1 kg per day.
	start := day(2025, 3, 3)
	var obs []model.WeightObservation
	for i := 0; i < 21; i++ {
		obs = append(obs, model.WeightObservation{Date: start.AddDate(0, 0, i), Weight: 90 - 0.1*float64(i)})
	}
	require.NoError(t, st.AppendWeights(ctx, obs))

	target := 85.0
	since := day(2025, 3, 10)
	cfg := model.AnalysisConfig{
		Since:  &since,
		Window: 7,
		Target: &target,
		Today:  day(2025, 3, 23),
	}
	report, err := BuildReport(ctx, st, cfg)
	require.NoError(t, err)

	require.Len(t, report.Observations, 14)
	assert.Equal(t, int64(1), report.Version)
	assert.Equal(t, []string{"2025-W11", "2025-W12"}, report.Weekly.Labels())
	assert.Len(t, report.MovingAverage, 8)
	assert.Len(t, report.MovingAverageDates, 8)
	assert.InDelta(t, -0.1, report.Trend.Slope, 1e-9)

	require.True(t, report.AverageWeeklyChange.Valid)
	assert.InDelta(t, -0.7, report.AverageWeeklyChange.Value, 1e-9)
	assert.InDelta(t, 0.7, report.AverageWeeklyLoss.Value, 1e-9)

	require.NotNil(t, report.Goal)
	assert.Equal(t, GoalProjected, report.Goal.Outcome)
	// 88.0 -> 85.0 at 0.7 kg/week is 4.2857 weeks = 30 days.
	assert.InDelta(t, 88.0, report.Goal.CurrentWeight, 1e-9)
	assert.Equal(t, day(2025, 4, 22), report.Goal.ProjectedDate)
}

func TestBuildReportSourceError(t *testing.T) {
	_, err := BuildReport(context.Background(), failingSource{}, model.AnalysisConfig{})
	require.Error(t, err)
}

func TestReportFromDatasetDefaults(t *testing.T) {
	r := ReportFromDataset(model.Dataset{}, model.AnalysisConfig{})
	assert.True(t, r.Empty())
	assert.Equal(t, DefaultWindow, r.Config.Window)
	assert.Nil(t, r.Goal)
	assert.False(t, r.CurrentWeight().Valid)
	assert.Empty(t, r.MovingAverage)
}

func TestReportIsIdempotent(t *testing.T) {
	ds := model.Dataset{Version: 3, Observations: series(day(2025, 1, 1), 80, 79.5, 79.8, 79.2, 79, 78.8, 78.9, 78.5)}
	cfg := model.AnalysisConfig{Window: 3, Today: day(2025, 2, 1)}
	assert.Equal(t, ReportFromDataset(ds, cfg), ReportFromDataset(ds, cfg))
}

func TestRenderReport(t *testing.T) {
	target := 78.0
	ds := model.Dataset{Observations: series(day(2025, 4, 14), 80, 80.5, 80.2, 80.2, 80, 79.8, 80.1, 79.9, 79.6)}
	r := ReportFromDataset(ds, model.AnalysisConfig{Window: 7, Target: &target, Today: day(2025, 4, 22)})

	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, r, RenderOptions{Width: 80, PlotHeight: 6}))
	out := buf.String()

	assert.Contains(t, out, "Entries: 9 (2025-04-14 .. 2025-04-22)")
	assert.Contains(t, out, "Total weight lost: 0.4 kg")
	assert.Contains(t, out, "Weight progression")
	assert.Contains(t, out, "7-entry avg")
	assert.Contains(t, out, "2025-W16")
	assert.Contains(t, out, "You tend to gain the most weight on Sunday (+0.30 kg on average).")
	assert.Contains(t, out, "Goal: 78.0 kg")
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, ReportFromDataset(model.Dataset{}, model.AnalysisConfig{}), RenderOptions{}))
	assert.True(t, strings.HasPrefix(buf.String(), "No weight entries yet."))
}

func TestWeeklyRows(t *testing.T) {
	ws := WeeklyAggregate([]model.WeightObservation{
		{Date: day(2025, 4, 14), Weight: 81.2},
		{Date: day(2025, 4, 21), Weight: 80.85},
	})
	rows := WeeklyRows(ws)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-W16", "81.200", "--", "1"}, rows[0])
	assert.Equal(t, []string{"2025-W17", "80.850", "-0.350", "1"}, rows[1])
}

func TestHighlightLinesConsistent(t *testing.T) {
	lines := HighlightLines(Highlights{Consistent: true}, "in", FlatByMonth)
	assert.Equal(t, []string{FlatByMonth}, lines)
}
