package gym_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wtrack/internal/gym"
	"github.com/verte-zerg/wtrack/internal/model"
)

const bench = "Flat Barbell Bench Press"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSets() []model.ExerciseSet {
	return []model.ExerciseSet{
		{Date: day(2025, 4, 18), Exercise: bench, Weight: 62.5, Reps: 6},
		{Date: day(2025, 4, 14), Exercise: bench, Weight: 60, Reps: 8},
		{Date: day(2025, 4, 14), Exercise: bench, Weight: 60, Reps: 7},
		{Date: day(2025, 4, 14), Exercise: "Pull Up", Weight: 0, Reps: 10},
		{Date: day(2025, 4, 21), Exercise: "Pull Up", Weight: 5, Reps: 8},
	}
}

func TestSummarize(t *testing.T) {
	summaries := gym.Summarize(testSets(), bench)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, day(2025, 4, 14), first.Date)
	assert.Equal(t, bench, first.Exercise)
	assert.Equal(t, 2, first.SetCount)
	assert.InDelta(t, 900.0, first.TotalVolume, 1e-9)
	assert.InDelta(t, 60.0, first.MaxWeight, 1e-9)
	assert.InDelta(t, 7.5, first.AvgRepsPerSet, 1e-9)
	assert.InDelta(t, 450.0, first.AvgVolumePerSet, 1e-9)

	second := summaries[1]
	assert.Equal(t, day(2025, 4, 18), second.Date)
	assert.Equal(t, 1, second.SetCount)
	assert.InDelta(t, 375.0, second.TotalVolume, 1e-9)
}

func TestSummarizeExactMatch(t *testing.T) {
	assert.Empty(t, gym.Summarize(testSets(), "pull up"))
	assert.Empty(t, gym.Summarize(testSets(), "Pull Up "))
	assert.Len(t, gym.Summarize(testSets(), "Pull Up"), 2)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, gym.Summarize(nil, bench))
}

func TestSummarizeBodyweightSets(t *testing.T) {
	summaries := gym.Summarize(testSets(), "Pull Up")
	require.Len(t, summaries, 2)
	assert.Equal(t, 0.0, summaries[0].TotalVolume)
	assert.Equal(t, 0.0, summaries[0].MaxWeight)
	assert.InDelta(t, 10.0, summaries[0].AvgRepsPerSet, 1e-9)
}

func TestFilterByDateRange(t *testing.T) {
	sets := testSets()
	orig := append([]model.ExerciseSet(nil), sets...)

	filtered := gym.FilterByDateRange(sets, day(2025, 4, 14), time.Date(2025, 4, 18, 6, 0, 0, 0, time.UTC))
	assert.Len(t, filtered, 4)
	for _, s := range filtered {
		assert.False(t, s.Date.After(day(2025, 4, 18)))
	}
	assert.Equal(t, orig, sets)

	assert.Len(t, gym.FilterByDateRange(sets, day(2025, 4, 21), day(2025, 4, 21)), 1)
	assert.Empty(t, gym.FilterByDateRange(sets, day(2025, 5, 1), day(2025, 5, 2)))
}

func TestSummarizeRoutine(t *testing.T) {
	routine := model.Routine{Days: []model.RoutineDay{
		{Label: "Day 1", Exercises: []string{bench, "Dips"}},
		{Label: "Day 2", Exercises: []string{"Pull Up"}},
	}}
	days := gym.SummarizeRoutine(testSets(), routine)
	require.Len(t, days, 2)
	assert.Equal(t, "Day 1", days[0].Label)
	require.Len(t, days[0].Exercises, 2)
	assert.Len(t, days[0].Exercises[0].Sessions, 2)
	assert.Equal(t, "Dips", days[0].Exercises[1].Exercise)
	assert.Empty(t, days[0].Exercises[1].Sessions)
	assert.Len(t, days[1].Exercises[0].Sessions, 2)
}

func TestExercises(t *testing.T) {
	assert.Equal(t, []string{bench, "Pull Up"}, gym.Exercises(testSets()))
	assert.Empty(t, gym.Exercises(nil))
}

func TestRenderRoutine(t *testing.T) {
	routine := model.Routine{Days: []model.RoutineDay{
		{Label: "Push", Exercises: []string{bench, "Dips"}},
	}}
	var buf bytes.Buffer
	require.NoError(t, gym.RenderRoutine(&buf, gym.SummarizeRoutine(testSets(), routine), 40, 4))
	out := buf.String()
	assert.Contains(t, out, "== Push ==")
	assert.Contains(t, out, "2025-04-14    2  900.0")
	assert.Contains(t, out, "No data available for Dips in the selected range.")
	assert.Contains(t, out, "avg vol/set")
}

func TestSessionRows(t *testing.T) {
	rows := gym.SessionRows(gym.Summarize(testSets(), bench))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-04-14", "2", "900.0", "450.0", "60.0", "7.5"}, rows[0])
}
