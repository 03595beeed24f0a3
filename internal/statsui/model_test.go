package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wtrack/internal/model"
)

type fakeSource struct {
	ds    model.Dataset
	loads int
}

func (f *fakeSource) LoadDataset(_ context.Context, since *time.Time) (model.Dataset, error) {
	f.loads++
	if since == nil {
		return f.ds, nil
	}
	out := model.Dataset{Version: f.ds.Version}
	for _, o := range f.ds.Observations {
		if !o.Date.Before(*since) {
			out.Observations = append(out.Observations, o)
		}
	}
	return out, nil
}

func (f *fakeSource) Version(context.Context) (int64, error) {
	return f.ds.Version, nil
}

func newFakeSource() *fakeSource {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	ds := model.Dataset{Version: 1}
	for i := 0; i < 28; i++ {
		ds.Observations = append(ds.Observations, model.WeightObservation{
			Date:   start.AddDate(0, 0, i),
			Weight: 90 - 0.1*float64(i),
		})
	}
	return &fakeSource{ds: ds}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelLoadsReport(t *testing.T) {
	src := newFakeSource()
	m := NewModel(src, model.AnalysisConfig{})
	assert.Equal(t, 1, src.loads)
	assert.Equal(t, 7, m.Config().Window)
	assert.Len(t, m.Report().Observations, 28)
	assert.Len(t, m.Report().MovingAverage, 22)
}

func TestWindowKeys(t *testing.T) {
	src := newFakeSource()
	m := NewModel(src, model.AnalysisConfig{Window: 7})

	m.Update(key("="))
	assert.Equal(t, 14, m.Config().Window)
	assert.Len(t, m.Report().MovingAverage, 15)

	m.Update(key("-"))
	m.Update(key("-"))
	assert.Equal(t, 5, m.Config().Window)
	assert.Equal(t, 4, src.loads)
}

func TestReloadSkipsUnchangedVersion(t *testing.T) {
	src := newFakeSource()
	m := NewModel(src, model.AnalysisConfig{})
	m.Update(key("r"))
	assert.Equal(t, 1, src.loads)

	src.ds.Version++
	m.Update(key("r"))
	assert.Equal(t, 2, src.loads)
}

func TestSettingsForm(t *testing.T) {
	src := newFakeSource()
	m := NewModel(src, model.AnalysisConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(key("/"))
	require.True(t, m.filterMode)
	m.filterInputs[0].SetValue("2025-03-17")
	m.filterInputs[2].SetValue("85")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.False(t, m.filterMode)
	require.NotNil(t, m.Config().Target)
	assert.Equal(t, 85.0, *m.Config().Target)
	assert.Len(t, m.Report().Observations, 14)
	require.NotNil(t, m.Report().Goal)
	assert.Equal(t, 2, src.loads)

	// Applying the same settings again does not reload.
	m.Update(key("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 2, src.loads)
}

func TestSettingsFormRejectsBadInput(t *testing.T) {
	m := NewModel(newFakeSource(), model.AnalysisConfig{})
	m.Update(key("/"))
	m.filterInputs[1].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filterMode)
	assert.Contains(t, m.filterError, "window")
}

func TestViewRendersTabs(t *testing.T) {
	target := 85.0
	m := NewModel(newFakeSource(), model.AnalysisConfig{Target: &target, Today: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})

	view := m.View()
	assert.Contains(t, view, "Progression")
	assert.Contains(t, view, "Weight progression")

	for i := 0; i < tabGoal; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	view = m.View()
	assert.Contains(t, view, "Target")
	assert.True(t, strings.Contains(view, "you will reach 85.0 kg"), view)
}

func TestQuit(t *testing.T) {
	m := NewModel(newFakeSource(), model.AnalysisConfig{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSteps(t *testing.T) {
	assert.Equal(t, 7, nextWindow(5))
	assert.Equal(t, 14, nextWindow(7))
	assert.Equal(t, 90, nextWindow(90))
	assert.Equal(t, 5, prevWindow(7))
	assert.Equal(t, 1, prevWindow(1))
	assert.Equal(t, 7, prevWindow(10))
}
