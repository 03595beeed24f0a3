package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/verte-zerg/wtrack/internal/model"
)

const (
	weightUnit    = "kg"
	dateLayout    = "2006-01-02"
	missingValue  = "--"
	seasonCaption = "Negative values mean weight loss on average; positive means weight gain."
)

// Messages for a seasonality breakdown without a clear pattern.
const (
	FlatByDay   = "Your weight changes are very consistent across the week, with no strong daily patterns."
	FlatByMonth = "Your weight changes are very consistent across months, with no strong seasonal patterns."
)

// RenderOptions controls the text report.
type RenderOptions struct {
	Width      int
	PlotHeight int
	ForceColor bool
}

// RenderReport writes the full plain-text report.
func RenderReport(w io.Writer, r Report, opts RenderOptions) error {
	if r.Empty() {
		_, err := fmt.Fprintln(w, "No weight entries yet. Add one with `wtrack add` or import a CSV.")
		return err
	}
	sections := []func(io.Writer, Report, RenderOptions) error{
		func(w io.Writer, r Report, _ RenderOptions) error { return RenderSummary(w, r) },
		RenderProgressionPlot,
		RenderWeeklyPlot,
		func(w io.Writer, r Report, _ RenderOptions) error { return RenderWeeklyTable(w, r) },
		func(w io.Writer, r Report, _ RenderOptions) error { return RenderSeasonality(w, r) },
		func(w io.Writer, r Report, _ RenderOptions) error { return RenderGoal(w, r) },
	}
	for _, section := range sections {
		if err := section(w, r, opts); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary writes the headline numbers.
func RenderSummary(w io.Writer, r Report) error {
	first := r.Observations[0]
	last := r.Observations[len(r.Observations)-1]
	lines := []string{
		fmt.Sprintf("Entries: %d (%s .. %s)", len(r.Observations), first.Date.Format(dateLayout), last.Date.Format(dateLayout)),
		fmt.Sprintf("Current weight: %.1f %s", last.Weight, weightUnit),
		totalChangeLine(r.TotalChange),
		fmt.Sprintf("Average weekly change: %s", formatRate(r.AverageWeeklyChange)),
	}
	if r.AverageWeeklyLoss.Valid {
		lines = append(lines, fmt.Sprintf("Average weekly weight loss rate: %.3f %s/week", r.AverageWeeklyLoss.Value, weightUnit))
	} else {
		lines = append(lines, "No weeks with weight loss recorded.")
	}
	lines = append(lines, fmt.Sprintf("Trend: %+.3f %s per entry", r.Trend.Slope, weightUnit))
	if spark := Sparkline(r.Weekly.Means()); spark != "" {
		lines = append(lines, "Weekly means: "+spark)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func totalChangeLine(change model.Optional) string {
	switch {
	case !change.Valid:
		return "Total change: " + missingValue
	case change.Value > 0:
		return fmt.Sprintf("Total weight lost: %.1f %s", change.Value, weightUnit)
	case change.Value < 0:
		return fmt.Sprintf("Total weight gained: %.1f %s", math.Abs(change.Value), weightUnit)
	default:
		return "No net weight change."
	}
}

func formatRate(rate model.Optional) string {
	if !rate.Valid {
		return missingValue
	}
	return fmt.Sprintf("%+.3f %s/week", rate.Value, weightUnit)
}

// WeeklyRows returns the weekly table rows: label, mean and diff.
func WeeklyRows(ws WeeklySeries) [][]string {
	rows := make([][]string, 0, len(ws.Buckets))
	for _, b := range ws.Buckets {
		diff := missingValue
		if b.Diff.Valid {
			diff = fmt.Sprintf("%+.3f", b.Diff.Value)
		}
		rows = append(rows, []string{
			b.Key.Label(),
			fmt.Sprintf("%.3f", b.Mean),
			diff,
			strconv.Itoa(len(b.Weights)),
		})
	}
	return rows
}

// RenderWeeklyTable writes weekly means and week-over-week changes.
func RenderWeeklyTable(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Weekly averages"); err != nil {
		return err
	}
	lines := FormatTable([]string{"Week", "Mean", "Diff", "Entries"}, WeeklyRows(r.Weekly), map[int]bool{1: true, 2: true, 3: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// SeasonalRows returns label, mean change and sample count per bucket.
func SeasonalRows(buckets []model.SeasonalBucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		mean := missingValue
		if b.Mean.Valid {
			mean = fmt.Sprintf("%+.3f", b.Mean.Value)
		}
		rows = append(rows, []string{b.Label, mean, strconv.Itoa(b.Count)})
	}
	return rows
}

// RenderSeasonality writes the weekday and month breakdowns.
func RenderSeasonality(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, seasonCaption); err != nil {
		return err
	}
	groups := []struct {
		title   string
		prefix  string
		flat    string
		buckets []model.SeasonalBucket
	}{
		{title: "Average change by day of week", prefix: "on", flat: FlatByDay, buckets: r.ByDay},
		{title: "Average change by month (all years pooled)", prefix: "in", flat: FlatByMonth, buckets: r.ByMonth},
	}
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, g.title); err != nil {
			return err
		}
		for _, line := range FormatTable([]string{"", "Mean", "Samples"}, SeasonalRows(g.buckets), map[int]bool{1: true, 2: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		for _, line := range HighlightLines(SeasonalityHighlights(g.buckets), g.prefix, g.flat) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// HighlightLines phrases seasonality highlights. prefix joins the verb and
// the bucket label ("on Monday", "in March"); flat is printed instead when
// the breakdown is consistent.
func HighlightLines(h Highlights, prefix, flat string) []string {
	if h.Consistent {
		return []string{flat}
	}
	var lines []string
	if h.MaxGain != nil {
		lines = append(lines, fmt.Sprintf("You tend to gain the most weight %s %s (%+.2f %s on average).", prefix, h.MaxGain.Label, h.MaxGain.Mean.Value, weightUnit))
	}
	if h.MaxLoss != nil {
		lines = append(lines, fmt.Sprintf("You tend to lose the most weight %s %s (%.2f %s on average).", prefix, h.MaxLoss.Label, h.MaxLoss.Mean.Value, weightUnit))
	}
	return lines
}

// RenderGoal writes the goal projection sentence, if a target is set.
func RenderGoal(w io.Writer, r Report) error {
	if r.Goal == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Goal: %.1f %s\n", r.Goal.TargetWeight, weightUnit); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, r.Goal.Message())
	return err
}

// ProgressionSeries returns the daily weights, moving average and trend line
// aligned on observation index.
func ProgressionSeries(r Report) []Series {
	out := []Series{{Name: "weight", Values: r.Weights()}}
	if len(r.MovingAverage) > 0 {
		out = append(out, Series{
			Name:   fmt.Sprintf("%d-entry avg", r.Config.Window),
			Values: r.MovingAverage,
			Offset: r.Config.Window - 1,
		})
	}
	if r.Trend.N > 1 {
		out = append(out, Series{Name: "trend", Values: r.Trend.Line()})
	}
	return out
}

// Weights returns the raw weight column.
func (r Report) Weights() []float64 {
	return model.Dataset{Observations: r.Observations}.Weights()
}

// RenderProgressionPlot plots daily weights, moving average and trend.
func RenderProgressionPlot(w io.Writer, r Report, opts RenderOptions) error {
	if r.Empty() {
		return nil
	}
	return PlotWithOptions(w, "Weight progression", ProgressionSeries(r), PlotOptions{
		Width:       plotWidth(opts.Width),
		Height:      opts.PlotHeight,
		ForceColor:  opts.ForceColor,
		SharedScale: true,
		Unit:        weightUnit,
		StartLabel:  r.Observations[0].Date.Format(dateLayout),
		EndLabel:    r.Observations[len(r.Observations)-1].Date.Format(dateLayout),
	})
}

// RenderWeeklyPlot plots the weekly means.
func RenderWeeklyPlot(w io.Writer, r Report, opts RenderOptions) error {
	labels := r.Weekly.Labels()
	if len(labels) == 0 {
		return nil
	}
	return PlotWithOptions(w, "Weekly average weight", []Series{{Name: "weekly mean", Values: r.Weekly.Means()}}, PlotOptions{
		Width:       plotWidth(opts.Width),
		Height:      opts.PlotHeight,
		ForceColor:  opts.ForceColor,
		SharedScale: true,
		Unit:        weightUnit,
		StartLabel:  labels[0],
		EndLabel:    labels[len(labels)-1],
	})
}

// plotWidth leaves room for the widest kg axis label.
func plotWidth(total int) int {
	if total <= 0 {
		return 0
	}
	return PlotWidthFor(total) - len("100.0 kg") + len(axisLabelTop)
}
