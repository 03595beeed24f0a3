package stats

import (
	"sort"

	"github.com/verte-zerg/wtrack/internal/model"
)

// WeeklySeries holds ISO-week buckets in chronological order.
type WeeklySeries struct {
	Buckets []model.WeekBucket
}

// Labels returns the "{year}-W{week}" label of every bucket.
func (s WeeklySeries) Labels() []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Key.Label()
	}
	return out
}

// Means returns the mean weight of every bucket.
func (s WeeklySeries) Means() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Mean
	}
	return out
}

// Diffs returns the week-over-week change of every bucket. The first is invalid.
func (s WeeklySeries) Diffs() []model.Optional {
	out := make([]model.Optional, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Diff
	}
	return out
}

// WeeklyAggregate buckets observations by ISO week and computes bucket means
// and the change from the preceding bucket.
func WeeklyAggregate(obs []model.WeightObservation) WeeklySeries {
	groups := make(map[model.WeekKey][]float64)
	for _, o := range obs {
		year, week := o.Date.ISOWeek()
		key := model.WeekKey{Year: year, Week: week}
		groups[key] = append(groups[key], o.Weight)
	}

	keys := make([]model.WeekKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})

	buckets := make([]model.WeekBucket, 0, len(keys))
	for i, k := range keys {
		weights := groups[k]
		bucket := model.WeekBucket{
			Key:     k,
			Weights: weights,
			Mean:    mean(weights),
		}
		if i > 0 {
			bucket.Diff = model.Some(bucket.Mean - buckets[i-1].Mean)
		}
		buckets = append(buckets, bucket)
	}
	return WeeklySeries{Buckets: buckets}
}
