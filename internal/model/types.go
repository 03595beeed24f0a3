// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Day truncates t to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Optional is a float value that may be absent.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// WeightObservation is one dated body-weight sample.
type WeightObservation struct {
	Date   time.Time
	Weight float64
}

// Dataset is a versioned snapshot of the weight log.
type Dataset struct {
	Version      int64
	Observations []WeightObservation
}

// Weights returns the weight column of the dataset.
func (d Dataset) Weights() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = o.Weight
	}
	return out
}

// Dates returns the date column of the dataset.
func (d Dataset) Dates() []time.Time {
	out := make([]time.Time, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = o.Date
	}
	return out
}

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int
	Week int
}

// Label formats the key as "{year}-W{week}".
func (k WeekKey) Label() string {
	return fmt.Sprintf("%d-W%d", k.Year, k.Week)
}

// Before orders keys chronologically.
func (k WeekKey) Before(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Week < other.Week
}

// WeekBucket groups all weights logged within one ISO week.
type WeekBucket struct {
	Key     WeekKey
	Weights []float64
	Mean    float64
	// Diff is the change from the previous bucket's mean; invalid for the first bucket.
	Diff Optional
}

// SeasonalBucket is the mean day-over-day change for a weekday or month.
type SeasonalBucket struct {
	Label string
	Mean  Optional
	Count int
}

// ExerciseSet is one logged gym set.
type ExerciseSet struct {
	Date     time.Time
	Exercise string
	Weight   float64
	Reps     int
}

// Volume returns weight times reps.
func (s ExerciseSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// ExerciseSessionSummary aggregates the sets of one exercise on one date.
type ExerciseSessionSummary struct {
	Exercise        string
	Date            time.Time
	TotalVolume     float64
	SetCount        int
	MaxWeight       float64
	AvgRepsPerSet   float64
	AvgVolumePerSet float64
}

// RoutineDay is a labeled, ordered list of exercise names.
type RoutineDay struct {
	Label     string
	Exercises []string
}

// Routine groups exercises into training days for display.
type Routine struct {
	Days []RoutineDay
}

// AnalysisConfig defines filters and options for the weight report.
type AnalysisConfig struct {
	Since  *time.Time
	Window int
	Target *float64
	Today  time.Time
}
