// Package generator builds synthetic weight logs for trying wtrack out.
package generator

import (
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/verte-zerg/wtrack/internal/model"
)

const (
	noiseKg  = 0.4
	skipRate = 10 // percent of days without an entry
)

// weekdayOffset adds a small weekly rhythm, heavier after the weekend.
var weekdayOffset = map[time.Weekday]float64{
	time.Monday:    0.3,
	time.Tuesday:   0.15,
	time.Wednesday: 0,
	time.Thursday:  -0.1,
	time.Friday:    -0.15,
	time.Saturday:  0,
	time.Sunday:    0.2,
}

// Generator produces randomized weight series.
type Generator struct {
	faker *gofakeit.Faker
}

// New returns a Generator. A zero seed picks a random one.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Weights returns up to days daily observations starting at start. The
// underlying weight drifts by weeklyRate kg per week, with weekday rhythm,
// noise and occasional skipped days. Weights are rounded to 0.1 kg and never
// drop below 1 kg.
func (g *Generator) Weights(start time.Time, days int, startWeight, weeklyRate float64) []model.WeightObservation {
	start = model.Day(start)
	out := make([]model.WeightObservation, 0, days)
	for i := 0; i < days; i++ {
		if i > 0 && g.faker.Number(1, 100) <= skipRate {
			continue
		}
		date := start.AddDate(0, 0, i)
		w := startWeight + weeklyRate*float64(i)/7
		w += weekdayOffset[date.Weekday()]
		w += g.faker.Float64Range(-noiseKg, noiseKg)
		w = math.Max(1, math.Round(w*10)/10)
		out = append(out, model.WeightObservation{Date: date, Weight: w})
	}
	return out
}
