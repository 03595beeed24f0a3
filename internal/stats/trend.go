package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/wtrack/internal/model"
)

// TrendModel is a first-order fit of weight against observation index,
// where index runs from 1 to N.
type TrendModel struct {
	Slope     float64
	Intercept float64
	N         int
}

// Predict evaluates the fitted line at index.
func (m TrendModel) Predict(index int) float64 {
	return m.Slope*float64(index) + m.Intercept
}

// Line evaluates the model at indices 1..N.
func (m TrendModel) Line() []float64 {
	out := make([]float64, m.N)
	for i := range out {
		out[i] = m.Predict(i + 1)
	}
	return out
}

// LinearTrend fits weight = slope*index + intercept by ordinary least squares.
// The unit of the slope is "per observation", not "per day". With fewer than
// two weights the model is the constant sole weight, or 0 when empty.
func LinearTrend(weights []float64) TrendModel {
	n := len(weights)
	switch n {
	case 0:
		return TrendModel{}
	case 1:
		return TrendModel{Intercept: weights[0], N: 1}
	}
	// x = 1..n, so mean(x) = (n+1)/2.
	meanX := float64(n+1) / 2
	meanY := mean(weights)
	var sxy, sxx float64
	for i, y := range weights {
		dx := float64(i+1) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	slope := sxy / sxx
	return TrendModel{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		N:         n,
	}
}

// AverageWeeklyChange is the mean of every defined week-over-week change,
// gains and losses alike. This is the rate used for goal projection.
func AverageWeeklyChange(diffs []model.Optional) model.Optional {
	var sum float64
	count := 0
	for _, d := range diffs {
		if !d.Valid {
			continue
		}
		sum += d.Value
		count++
	}
	if count == 0 {
		return model.Optional{}
	}
	return model.Some(sum / float64(count))
}

// AverageWeeklyLoss is the magnitude of the mean change over loss weeks only.
// It is a different statistic from AverageWeeklyChange and is only reported.
func AverageWeeklyLoss(diffs []model.Optional) model.Optional {
	var sum float64
	count := 0
	for _, d := range diffs {
		if !d.Valid || d.Value >= 0 {
			continue
		}
		sum += d.Value
		count++
	}
	if count == 0 {
		return model.Optional{}
	}
	return model.Some(math.Abs(sum / float64(count)))
}

// GoalOutcome classifies a goal projection.
type GoalOutcome int

const (
	// GoalNotComputable means the average rate is zero or unknown.
	GoalNotComputable GoalOutcome = iota
	// GoalProjected means the target lies ahead on the current trend.
	GoalProjected
	// GoalAlreadyPassed means the target lies behind the current trend.
	GoalAlreadyPassed
	// GoalAtTarget means the current weight equals the target.
	GoalAtTarget
)

func (o GoalOutcome) String() string {
	switch o {
	case GoalProjected:
		return "projected"
	case GoalAlreadyPassed:
		return "already-passed"
	case GoalAtTarget:
		return "at-target"
	default:
		return "not-computable"
	}
}

// GoalProjection is the result of projecting a target weight.
type GoalProjection struct {
	Outcome       GoalOutcome
	CurrentWeight float64
	TargetWeight  float64
	AvgWeeklyRate float64
	WeeksNeeded   float64
	ProjectedDate time.Time
}

// Message is the user-facing sentence for the projection.
func (g GoalProjection) Message() string {
	switch g.Outcome {
	case GoalProjected:
		return fmt.Sprintf("At your current average rate (%+.2f kg/week), you will reach %.1f kg in about %.1f weeks (around %s).",
			g.AvgWeeklyRate, g.TargetWeight, g.WeeksNeeded, g.ProjectedDate.Format("2006-01-02"))
	case GoalAlreadyPassed:
		return "You have already passed your target weight based on your current trend."
	case GoalAtTarget:
		return fmt.Sprintf("You are at your target weight of %.1f kg.", g.TargetWeight)
	default:
		return "Not enough weight change to predict a goal date. Try tracking a few more weeks."
	}
}

// maxGoalDays bounds projections; a slower rate is reported as not computable.
const maxGoalDays = 100 * 366

// ProjectGoalDate inverts the average weekly rate against the distance to the
// target weight. The projected date is today plus round(weeks*7) days.
func ProjectGoalDate(current, target float64, avgWeeklyRate model.Optional, today time.Time) GoalProjection {
	g := GoalProjection{
		CurrentWeight: current,
		TargetWeight:  target,
		AvgWeeklyRate: avgWeeklyRate.Value,
	}
	if !avgWeeklyRate.Valid || avgWeeklyRate.Value == 0 {
		g.Outcome = GoalNotComputable
		return g
	}
	g.WeeksNeeded = (target - current) / avgWeeklyRate.Value
	switch {
	case g.WeeksNeeded > 0:
		days := math.Round(g.WeeksNeeded * 7)
		if days > maxGoalDays {
			g.Outcome = GoalNotComputable
			return g
		}
		g.Outcome = GoalProjected
		g.ProjectedDate = model.Day(today).AddDate(0, 0, int(days))
	case g.WeeksNeeded < 0:
		g.Outcome = GoalAlreadyPassed
	default:
		g.Outcome = GoalAtTarget
	}
	return g
}
