package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/wtrack/internal/model"
)

// consistentThreshold is the |mean change| in kg below which every bucket
// counts as flat.
const consistentThreshold = 0.05

var weekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// SeasonalityByDay averages consecutive weight changes by the weekday of the
// later observation, Monday through Sunday.
func SeasonalityByDay(obs []model.WeightObservation) []model.SeasonalBucket {
	labels := make([]string, len(weekdayOrder))
	index := make(map[time.Weekday]int, len(weekdayOrder))
	for i, wd := range weekdayOrder {
		labels[i] = wd.String()
		index[wd] = i
	}
	return seasonality(obs, labels, func(t time.Time) int {
		return index[t.Weekday()]
	})
}

// SeasonalityByMonth averages consecutive weight changes by calendar month,
// pooling every year together.
func SeasonalityByMonth(obs []model.WeightObservation) []model.SeasonalBucket {
	labels := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		labels[m-1] = m.String()
	}
	return seasonality(obs, labels, func(t time.Time) int {
		return int(t.Month()) - 1
	})
}

func seasonality(obs []model.WeightObservation, labels []string, slot func(time.Time) int) []model.SeasonalBucket {
	sums := make([]float64, len(labels))
	counts := make([]int, len(labels))
	for i := 1; i < len(obs); i++ {
		idx := slot(obs[i].Date)
		sums[idx] += obs[i].Weight - obs[i-1].Weight
		counts[idx]++
	}
	out := make([]model.SeasonalBucket, len(labels))
	for i, label := range labels {
		out[i] = model.SeasonalBucket{Label: label, Count: counts[i]}
		if counts[i] > 0 {
			out[i].Mean = model.Some(sums[i] / float64(counts[i]))
		}
	}
	return out
}

// Highlights summarizes a seasonality breakdown.
type Highlights struct {
	MaxGain    *model.SeasonalBucket
	MaxLoss    *model.SeasonalBucket
	Consistent bool
}

// SeasonalityHighlights finds the bucket with the largest mean gain and the
// one with the largest mean loss. Consistent is set when every defined bucket
// stays within the flat threshold.
func SeasonalityHighlights(buckets []model.SeasonalBucket) Highlights {
	var h Highlights
	defined := 0
	consistent := true
	for i := range buckets {
		b := &buckets[i]
		if !b.Mean.Valid {
			continue
		}
		defined++
		if math.Abs(b.Mean.Value) >= consistentThreshold {
			consistent = false
		}
		if b.Mean.Value > 0 && (h.MaxGain == nil || b.Mean.Value > h.MaxGain.Mean.Value) {
			h.MaxGain = b
		}
		if b.Mean.Value < 0 && (h.MaxLoss == nil || b.Mean.Value < h.MaxLoss.Mean.Value) {
			h.MaxLoss = b
		}
	}
	h.Consistent = defined > 0 && consistent
	return h
}
