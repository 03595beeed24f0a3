// Package stats contains weight-log statistics, trend projection and reporting.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/wtrack/internal/model"
)

// DefaultWindow is the moving-average window in observations.
const DefaultWindow = 7

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a simple moving average over full windows only.
// Output index k is the mean of values[k .. k+window-1]; when there are fewer
// values than the window the result is empty.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 || len(values) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// MovingAverageDates returns the dates aligned with MovingAverage output.
func MovingAverageDates(dates []time.Time, window int) []time.Time {
	if window < 1 || len(dates) < window {
		return []time.Time{}
	}
	out := make([]time.Time, len(dates)-window+1)
	copy(out, dates[window-1:])
	return out
}

// TotalChange returns first minus last weight, positive when weight was lost.
func TotalChange(obs []model.WeightObservation) model.Optional {
	if len(obs) == 0 {
		return model.Optional{}
	}
	return model.Some(obs[0].Weight - obs[len(obs)-1].Weight)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
