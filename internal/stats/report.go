package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/wtrack/internal/model"
)

// DatasetSource loads a weight-log snapshot.
type DatasetSource interface {
	LoadDataset(ctx context.Context, since *time.Time) (model.Dataset, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Config  model.AnalysisConfig
	Version int64

	Observations []model.WeightObservation
	Weekly       WeeklySeries

	MovingAverage      []float64
	MovingAverageDates []time.Time
	Trend              TrendModel

	TotalChange         model.Optional
	AverageWeeklyChange model.Optional
	AverageWeeklyLoss   model.Optional

	ByDay   []model.SeasonalBucket
	ByMonth []model.SeasonalBucket

	// Goal is nil when no target weight is configured or the log is empty.
	Goal *GoalProjection
}

// BuildReport loads the dataset once and computes every weight statistic
// from that snapshot.
func BuildReport(ctx context.Context, src DatasetSource, cfg model.AnalysisConfig) (Report, error) {
	ds, err := src.LoadDataset(ctx, cfg.Since)
	if err != nil {
		return Report{}, err
	}
	return ReportFromDataset(ds, cfg), nil
}

// ReportFromDataset computes a report from an already loaded dataset.
func ReportFromDataset(ds model.Dataset, cfg model.AnalysisConfig) Report {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Today.IsZero() {
		cfg.Today = time.Now()
	}
	obs := ds.Observations
	weights := ds.Weights()
	weekly := WeeklyAggregate(obs)
	diffs := weekly.Diffs()

	r := Report{
		Config:              cfg,
		Version:             ds.Version,
		Observations:        obs,
		Weekly:              weekly,
		MovingAverage:       MovingAverage(weights, cfg.Window),
		MovingAverageDates:  MovingAverageDates(ds.Dates(), cfg.Window),
		Trend:               LinearTrend(weights),
		TotalChange:         TotalChange(obs),
		AverageWeeklyChange: AverageWeeklyChange(diffs),
		AverageWeeklyLoss:   AverageWeeklyLoss(diffs),
		ByDay:               SeasonalityByDay(obs),
		ByMonth:             SeasonalityByMonth(obs),
	}
	if cfg.Target != nil && len(obs) > 0 {
		goal := ProjectGoalDate(obs[len(obs)-1].Weight, *cfg.Target, r.AverageWeeklyChange, cfg.Today)
		r.Goal = &goal
	}
	return r
}

// Empty reports whether the dataset had no observations.
func (r Report) Empty() bool {
	return len(r.Observations) == 0
}

// CurrentWeight returns the most recent weight.
func (r Report) CurrentWeight() model.Optional {
	if r.Empty() {
		return model.Optional{}
	}
	return model.Some(r.Observations[len(r.Observations)-1].Weight)
}
