package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wtrack/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func series(start time.Time, weights ...float64) []model.WeightObservation {
	out := make([]model.WeightObservation, len(weights))
	for i, w := range weights {
		out[i] = model.WeightObservation{Date: start.AddDate(0, 0, i), Weight: w}
	}
	return out
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	ma := MovingAverage(values, 7)
	require.Len(t, ma, 4)
	assert.InDelta(t, 4.0, ma[0], 1e-9)
	assert.InDelta(t, 7.0, ma[3], 1e-9)

	exact := MovingAverage(values[:7], 7)
	require.Len(t, exact, 1)
	assert.InDelta(t, mean(values[:7]), exact[0], 1e-9)

	assert.Empty(t, MovingAverage(values[:6], 7))
	assert.Empty(t, MovingAverage(values, 0))
	assert.Empty(t, MovingAverage(nil, 7))
}

func TestMovingAverageLength(t *testing.T) {
	for n := 0; n < 15; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i)
		}
		want := n - DefaultWindow + 1
		if want < 0 {
			want = 0
		}
		assert.Len(t, MovingAverage(values, DefaultWindow), want, "n=%d", n)
	}
}

func TestMovingAverageDates(t *testing.T) {
	obs := series(day(2025, 1, 1), 1, 2, 3, 4, 5, 6, 7, 8)
	ds := model.Dataset{Observations: obs}
	dates := MovingAverageDates(ds.Dates(), 7)
	require.Len(t, dates, 2)
	assert.Equal(t, day(2025, 1, 7), dates[0])
	assert.Equal(t, day(2025, 1, 8), dates[1])
	assert.Empty(t, MovingAverageDates(ds.Dates()[:3], 7))
}

func TestMovingAverageDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2, 5, 4, 6, 7}
	orig := append([]float64(nil), values...)
	first := MovingAverage(values, 3)
	second := MovingAverage(values, 3)
	assert.Equal(t, orig, values)
	assert.Equal(t, first, second)
}

func TestTotalChange(t *testing.T) {
	assert.False(t, TotalChange(nil).Valid)
	got := TotalChange(series(day(2025, 1, 1), 90, 89, 88.5))
	require.True(t, got.Valid)
	assert.InDelta(t, 1.5, got.Value, 1e-9)
}

func TestWeeklyAggregate(t *testing.T) {
	// 2024-12-30 is Monday of ISO week 2025-W1.
	obs := []model.WeightObservation{
		{Date: day(2025, 1, 6), Weight: 89},
		{Date: day(2024, 12, 30), Weight: 91},
		{Date: day(2025, 1, 5), Weight: 90},
		{Date: day(2024, 12, 29), Weight: 92},
	}
	ws := WeeklyAggregate(obs)
	require.Len(t, ws.Buckets, 3)
	assert.Equal(t, []string{"2024-W52", "2025-W1", "2025-W2"}, ws.Labels())

	means := ws.Means()
	assert.InDelta(t, 92.0, means[0], 1e-9)
	assert.InDelta(t, 90.5, means[1], 1e-9)
	assert.InDelta(t, 89.0, means[2], 1e-9)

	diffs := ws.Diffs()
	require.Len(t, diffs, 3)
	assert.False(t, diffs[0].Valid)
	assert.InDelta(t, -1.5, diffs[1].Value, 1e-9)
	assert.InDelta(t, -1.5, diffs[2].Value, 1e-9)
}

func TestWeeklyAggregateSingleAndEmpty(t *testing.T) {
	empty := WeeklyAggregate(nil)
	assert.Empty(t, empty.Labels())
	assert.Empty(t, empty.Diffs())

	one := WeeklyAggregate(series(day(2025, 3, 3), 80, 81, 82))
	require.Len(t, one.Buckets, 1)
	assert.InDelta(t, 81.0, one.Means()[0], 1e-9)
	assert.False(t, one.Diffs()[0].Valid)
}

func TestLinearTrend(t *testing.T) {
	m := LinearTrend([]float64{10, 11, 12, 13})
	assert.InDelta(t, 1.0, m.Slope, 1e-9)
	assert.InDelta(t, 9.0, m.Intercept, 1e-9)
	line := m.Line()
	require.Len(t, line, 4)
	assert.InDelta(t, 10.0, line[0], 1e-9)
	assert.InDelta(t, 13.0, line[3], 1e-9)
}

func TestLinearTrendDegenerate(t *testing.T) {
	flat := LinearTrend([]float64{5, 5, 5})
	assert.InDelta(t, 0.0, flat.Slope, 1e-9)
	assert.InDelta(t, 5.0, flat.Intercept, 1e-9)

	one := LinearTrend([]float64{70})
	assert.Equal(t, 0.0, one.Slope)
	assert.Equal(t, []float64{70}, one.Line())

	none := LinearTrend(nil)
	assert.Equal(t, 0, none.N)
	assert.Empty(t, none.Line())
}

func TestAverageWeeklyRates(t *testing.T) {
	diffs := []model.Optional{{}, model.Some(-1), model.Some(0.5), model.Some(-0.5)}

	change := AverageWeeklyChange(diffs)
	require.True(t, change.Valid)
	assert.InDelta(t, -1.0/3, change.Value, 1e-9)

	loss := AverageWeeklyLoss(diffs)
	require.True(t, loss.Valid)
	assert.InDelta(t, 0.75, loss.Value, 1e-9)

	assert.False(t, AverageWeeklyChange([]model.Optional{{}}).Valid)
	assert.False(t, AverageWeeklyLoss([]model.Optional{{}, model.Some(0.2)}).Valid)
}

func TestProjectGoalDate(t *testing.T) {
	today := day(2025, 5, 1)

	g := ProjectGoalDate(80, 75, model.Some(-0.5), today)
	assert.Equal(t, GoalProjected, g.Outcome)
	assert.InDelta(t, 10.0, g.WeeksNeeded, 1e-9)
	assert.Equal(t, today.AddDate(0, 0, 70), g.ProjectedDate)
	assert.Contains(t, g.Message(), "2025-07-10")

	passed := ProjectGoalDate(80, 85, model.Some(-0.5), today)
	assert.Equal(t, GoalAlreadyPassed, passed.Outcome)
	assert.True(t, passed.ProjectedDate.IsZero())

	at := ProjectGoalDate(80, 80, model.Some(-0.5), today)
	assert.Equal(t, GoalAtTarget, at.Outcome)

	zero := ProjectGoalDate(80, 75, model.Some(0), today)
	assert.Equal(t, GoalNotComputable, zero.Outcome)
	assert.Contains(t, zero.Message(), "Not enough")

	unknown := ProjectGoalDate(80, 75, model.Optional{}, today)
	assert.Equal(t, GoalNotComputable, unknown.Outcome)
}

func TestProjectGoalDateNegligibleRate(t *testing.T) {
	today := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	for _, rate := range []float64{-1e-12, -1e-14, -1e-300} {
		g := ProjectGoalDate(80, 75, model.Some(rate), today)
		assert.Equal(t, GoalNotComputable, g.Outcome, "rate %g", rate)
		assert.True(t, g.ProjectedDate.IsZero())
	}

	slow := ProjectGoalDate(80, 75, model.Some(-0.01), today)
	assert.Equal(t, GoalProjected, slow.Outcome)
	assert.Equal(t, today.AddDate(0, 0, 3500), slow.ProjectedDate)
}

func TestProjectGoalDateRoundsDays(t *testing.T) {
	today := day(2025, 5, 1)
	// 1.0 / 0.3 = 3.333 weeks = 23.33 days.
	g := ProjectGoalDate(81, 80, model.Some(-0.3), today)
	require.Equal(t, GoalProjected, g.Outcome)
	assert.Equal(t, today.AddDate(0, 0, 23), g.ProjectedDate)
}

func TestSeasonalityByDay(t *testing.T) {
	// 2025-04-14 is a Monday.
	obs := series(day(2025, 4, 14), 80, 80.5, 80.2, 80.2, 80, 79.8, 80.1, 79.9)
	buckets := SeasonalityByDay(obs)
	require.Len(t, buckets, 7)
	assert.Equal(t, "Monday", buckets[0].Label)
	assert.Equal(t, "Sunday", buckets[6].Label)

	// The only Monday diff is the last one, 80.1 -> 79.9.
	require.True(t, buckets[0].Mean.Valid)
	assert.InDelta(t, -0.2, buckets[0].Mean.Value, 1e-9)
	assert.InDelta(t, 0.5, buckets[1].Mean.Value, 1e-9)
	assert.Equal(t, 1, buckets[1].Count)

	h := SeasonalityHighlights(buckets)
	require.NotNil(t, h.MaxGain)
	require.NotNil(t, h.MaxLoss)
	assert.Equal(t, "Tuesday", h.MaxGain.Label)
	assert.Equal(t, "Wednesday", h.MaxLoss.Label)
	assert.False(t, h.Consistent)
}

func TestSeasonalityByMonthPoolsYears(t *testing.T) {
	obs := []model.WeightObservation{
		{Date: day(2024, 1, 10), Weight: 90},
		{Date: day(2024, 1, 11), Weight: 89},
		{Date: day(2025, 1, 10), Weight: 85},
		{Date: day(2025, 1, 11), Weight: 86},
	}
	buckets := SeasonalityByMonth(obs)
	require.Len(t, buckets, 12)
	assert.Equal(t, "January", buckets[0].Label)
	// Diffs land in January: -1, -4, +1.
	assert.Equal(t, 3, buckets[0].Count)
	assert.InDelta(t, -4.0/3, buckets[0].Mean.Value, 1e-9)
	assert.False(t, buckets[1].Mean.Valid)
}

func TestSeasonalityEmptyAndConsistent(t *testing.T) {
	for _, b := range SeasonalityByDay(series(day(2025, 1, 1), 80)) {
		assert.False(t, b.Mean.Valid)
	}
	h := SeasonalityHighlights(SeasonalityByDay(series(day(2025, 1, 1), 80, 80.01, 80.02)))
	assert.True(t, h.Consistent)
	assert.Nil(t, h.MaxLoss)

	assert.False(t, SeasonalityHighlights(nil).Consistent)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{2, 2, 2}))
	assert.Equal(t, " @", Sparkline([]float64{1, 2}))
}
