// Package statsui provides the Bubble Tea weight report viewer.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/wtrack/internal/model"
	"github.com/verte-zerg/wtrack/internal/stats"
)

const (
	tabProgression = iota
	tabWeekly
	tabWeeklyTable
	tabSeasonality
	tabGoal
)

const (
	plotHeight   = 12
	defaultWidth = 80
	dateLayout   = "2006-01-02"
)

var windowSteps = []int{1, 3, 5, 7, 14, 21, 28, 60, 90}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A9AC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	gainStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A040"))
	lossStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

// Source is what the viewer needs from the store.
type Source interface {
	stats.DatasetSource
	Version(ctx context.Context) (int64, error)
}

// Model implements the Bubble Tea weight report viewer.
type Model struct {
	src Source
	cfg model.AnalysisConfig

	report stats.Report
	loaded bool
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	weeklyTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs the viewer and loads the first report.
func NewModel(src Source, cfg model.AnalysisConfig) *Model {
	if cfg.Window <= 0 {
		cfg.Window = stats.DefaultWindow
	}
	m := &Model{
		src:  src,
		cfg:  cfg,
		tabs: []string{"Progression", "Weekly", "Weekly Table", "Seasonality", "Goal"},
	}
	m.initInputs()
	m.initViewports()
	m.weeklyTable = newWeeklyTable(nil, defaultWidth, 10)
	m.refreshReport(true)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.setWindow(nextWindow(m.cfg.Window))
			return m, nil
		case "-":
			m.setWindow(prevWindow(m.cfg.Window))
			return m, nil
		case "r":
			m.refreshReport(false)
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabWeeklyTable {
				m.weeklyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabWeeklyTable {
				m.weeklyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabWeeklyTable {
				var cmd tea.Cmd
				m.weeklyTable, cmd = m.weeklyTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Config returns the current analysis settings.
func (m *Model) Config() model.AnalysisConfig {
	return m.cfg
}

// Report returns the report currently on screen.
func (m *Model) Report() stats.Report {
	return m.report
}

func (m *Model) setWindow(window int) {
	if window == m.cfg.Window {
		return
	}
	m.cfg.Window = window
	m.refreshReport(true)
	m.updateLayout()
}

// refreshReport rebuilds the report. Unless force is set, the dataset
// version is checked first and an unchanged log is not reloaded.
func (m *Model) refreshReport(force bool) {
	ctx := context.Background()
	if !force && m.loaded {
		version, err := m.src.Version(ctx)
		if err == nil && version == m.report.Version {
			return
		}
	}
	report, err := stats.BuildReport(ctx, m.src, m.cfg)
	if err != nil {
		logrus.Warnf("build report: %v", err)
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load weight log.")
		}
		return
	}
	m.errMsg = ""
	m.loaded = true
	m.report = report
	m.renderTabContents()
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Window: "),
		newFilterInput("Target (kg): "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if m.cfg.Since != nil {
		m.filterInputs[0].SetValue(m.cfg.Since.Format(dateLayout))
	} else {
		m.filterInputs[0].SetValue("")
	}
	m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Window))
	if m.cfg.Target != nil {
		m.filterInputs[2].SetValue(strconv.FormatFloat(*m.cfg.Target, 'f', -1, 64))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.weeklyTable.SetWidth(m.width)
	m.weeklyTable.SetHeight(maxInt(1, vpHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabWeeklyTable {
		m.weeklyTable.Focus()
	} else {
		m.weeklyTable.Blur()
	}
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewports[tabProgression].SetContent(renderProgression(m.report, width))
	m.viewports[tabWeekly].SetContent(renderWeekly(m.report, width))
	m.viewports[tabSeasonality].SetContent(renderSeasonality(m.report))
	m.viewports[tabGoal].SetContent(renderGoal(m.report))
	m.weeklyTable = newWeeklyTable(stats.WeeklyRows(m.report.Weekly), width, bodyHeight)
	if m.activeTab == tabWeeklyTable {
		m.weeklyTable.Focus()
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		changed, err := m.applyFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		if changed {
			m.refreshReport(true)
			m.updateLayout()
		}
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// applyFilter validates the settings form and reports whether anything
// differs from the current settings.
func (m *Model) applyFilter() (bool, error) {
	var since *time.Time
	if v := strings.TrimSpace(m.filterInputs[0].Value()); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return false, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	window := stats.DefaultWindow
	if v := strings.TrimSpace(m.filterInputs[1].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return false, fmt.Errorf("invalid window (use integer >= 1)")
		}
		window = parsed
	}

	var target *float64
	if v := strings.TrimSpace(m.filterInputs[2].Value()); v != "" {
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil || parsed <= 0 {
			return false, fmt.Errorf("invalid target (use a positive number)")
		}
		target = &parsed
	}

	next := m.cfg
	next.Since = since
	next.Window = window
	next.Target = target
	changed := !sameDay(next.Since, m.cfg.Since) || next.Window != m.cfg.Window || !sameFloat(next.Target, m.cfg.Target)
	m.cfg = next
	return changed, nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nextWindow(n int) int {
	for _, step := range windowSteps {
		if step > n {
			return step
		}
	}
	return n
}

func prevWindow(n int) int {
	for i := len(windowSteps) - 1; i >= 0; i-- {
		if windowSteps[i] < n {
			return windowSteps[i]
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
