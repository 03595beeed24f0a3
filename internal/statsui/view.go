package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/stats"
)

const noEntries = "No weight entries yet. Add one with `wtrack add` or import a CSV."

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	target := "none"
	if m.cfg.Target != nil {
		target = fmt.Sprintf("%.1f kg", *m.cfg.Target)
	}
	summary := fmt.Sprintf("Settings: since=%s  window=%d  target=%s", since, m.cfg.Window, target)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Reload: r  Settings: /  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabWeeklyTable {
		if m.report.Empty() {
			return fitLines(noEntries, m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.weeklyTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func renderProgression(r stats.Report, width int) string {
	if r.Empty() {
		return noEntries
	}
	cards := []string{
		metricCard("Entries", fmt.Sprintf("%d", len(r.Observations))),
		metricCard("Current", fmt.Sprintf("%.1f kg", r.CurrentWeight().Value)),
		metricCard("Total change", formatChange(r.TotalChange)),
		metricCard("Avg weekly change", formatRate(r.AverageWeeklyChange)),
		metricCard("Avg weekly loss", formatLoss(r.AverageWeeklyLoss)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if err := stats.RenderProgressionPlot(&buf, r, stats.RenderOptions{Width: width, PlotHeight: plotHeight, ForceColor: true}); err != nil {
		return fmt.Sprintf("Failed to render progression: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderWeekly(r stats.Report, width int) string {
	if r.Empty() {
		return noEntries
	}
	var buf bytes.Buffer
	if err := stats.RenderWeeklyPlot(&buf, r, stats.RenderOptions{Width: width, PlotHeight: plotHeight, ForceColor: true}); err != nil {
		return fmt.Sprintf("Failed to render weekly averages: %v", err)
	}
	spark := headerStyle.Render("Weekly means: " + stats.Sparkline(r.Weekly.Means()))
	return strings.TrimRight(buf.String()+spark, "\n")
}

func renderSeasonality(r stats.Report) string {
	if r.Empty() {
		return noEntries
	}
	sections := []string{headerStyle.Render("Negative values mean weight loss on average; positive means weight gain.")}
	groups := []struct {
		title   string
		prefix  string
		flat    string
		buckets []model.SeasonalBucket
	}{
		{title: "By day of week", prefix: "on", flat: stats.FlatByDay, buckets: r.ByDay},
		{title: "By month (all years pooled)", prefix: "in", flat: stats.FlatByMonth, buckets: r.ByMonth},
	}
	for _, g := range groups {
		lines := []string{cardValueStyle.Render(g.title)}
		lines = append(lines, stats.FormatTable([]string{"", "Mean", "Samples"}, stats.SeasonalRows(g.buckets), map[int]bool{1: true, 2: true})...)
		h := stats.SeasonalityHighlights(g.buckets)
		for _, line := range stats.HighlightLines(h, g.prefix, g.flat) {
			switch {
			case h.Consistent:
				lines = append(lines, line)
			case strings.Contains(line, "gain"):
				lines = append(lines, gainStyle.Render(line))
			default:
				lines = append(lines, lossStyle.Render(line))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func renderGoal(r stats.Report) string {
	if r.Empty() {
		return noEntries
	}
	if r.Goal == nil {
		return "No target weight set. Press / and enter a target."
	}
	g := r.Goal
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Current", fmt.Sprintf("%.1f kg", g.CurrentWeight)),
		metricCard("Target", fmt.Sprintf("%.1f kg", g.TargetWeight)),
		metricCard("Avg weekly change", formatRate(r.AverageWeeklyChange)),
	)
	message := g.Message()
	switch g.Outcome {
	case stats.GoalProjected, stats.GoalAtTarget:
		message = lossStyle.Render(message)
	case stats.GoalNotComputable:
		message = gainStyle.Render(message)
	}
	return cards + "\n\n" + message
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func formatChange(change model.Optional) string {
	switch {
	case !change.Valid:
		return "--"
	case change.Value > 0:
		return fmt.Sprintf("-%.1f kg", change.Value)
	case change.Value < 0:
		return fmt.Sprintf("+%.1f kg", -change.Value)
	default:
		return "0.0 kg"
	}
}

func formatRate(rate model.Optional) string {
	if !rate.Valid {
		return "--"
	}
	return fmt.Sprintf("%+.3f kg/wk", rate.Value)
}

func formatLoss(loss model.Optional) string {
	if !loss.Valid {
		return "none"
	}
	return fmt.Sprintf("%.3f kg/wk", loss.Value)
}

func newWeeklyTable(rows [][]string, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Week", Width: 9},
		{Title: "Mean", Width: 9},
		{Title: "Diff", Width: 8},
		{Title: "Entries", Width: 7},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, table.Row(row))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(weeklyTableStyles())
	return t
}

func weeklyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
