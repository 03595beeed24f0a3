// Package gym summarizes logged gym sets per exercise and training day.
package gym

import (
	"sort"
	"time"

	"github.com/verte-zerg/wtrack/internal/model"
)

// FilterByDateRange keeps sets whose calendar day lies within [start, end],
// both ends inclusive. The input is not modified.
func FilterByDateRange(sets []model.ExerciseSet, start, end time.Time) []model.ExerciseSet {
	from := model.Day(start)
	to := model.Day(end)
	out := make([]model.ExerciseSet, 0, len(sets))
	for _, s := range sets {
		d := model.Day(s.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Summarize groups the sets of one exercise by date. Exercise names are
// compared exactly, without case folding or trimming.
func Summarize(sets []model.ExerciseSet, exercise string) []model.ExerciseSessionSummary {
	day2sets := make(map[time.Time][]model.ExerciseSet)
	for _, s := range sets {
		if s.Exercise != exercise {
			continue
		}
		day := model.Day(s.Date)
		day2sets[day] = append(day2sets[day], s)
	}

	out := make([]model.ExerciseSessionSummary, 0, len(day2sets))
	for day, daySets := range day2sets {
		out = append(out, summarizeSession(exercise, day, daySets))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func summarizeSession(exercise string, day time.Time, sets []model.ExerciseSet) model.ExerciseSessionSummary {
	summary := model.ExerciseSessionSummary{
		Exercise: exercise,
		Date:     day,
		SetCount: len(sets),
	}
	reps := 0
	for i, s := range sets {
		summary.TotalVolume += s.Volume()
		reps += s.Reps
		if i == 0 || s.Weight > summary.MaxWeight {
			summary.MaxWeight = s.Weight
		}
	}
	summary.AvgRepsPerSet = float64(reps) / float64(len(sets))
	summary.AvgVolumePerSet = summary.TotalVolume / float64(len(sets))
	return summary
}

// ExerciseHistory is the session history of one routine exercise.
type ExerciseHistory struct {
	Exercise string
	Sessions []model.ExerciseSessionSummary
}

// DayHistory holds the histories of every exercise of a routine day.
type DayHistory struct {
	Label     string
	Exercises []ExerciseHistory
}

// SummarizeRoutine summarizes every routine exercise in routine order.
// Exercises without matching sets keep an empty history.
func SummarizeRoutine(sets []model.ExerciseSet, routine model.Routine) []DayHistory {
	out := make([]DayHistory, 0, len(routine.Days))
	for _, day := range routine.Days {
		dh := DayHistory{Label: day.Label}
		for _, name := range day.Exercises {
			dh.Exercises = append(dh.Exercises, ExerciseHistory{
				Exercise: name,
				Sessions: Summarize(sets, name),
			})
		}
		out = append(out, dh)
	}
	return out
}

// Exercises lists the distinct exercise names in first-seen order.
func Exercises(sets []model.ExerciseSet) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range sets {
		if _, ok := seen[s.Exercise]; ok {
			continue
		}
		seen[s.Exercise] = struct{}{}
		out = append(out, s.Exercise)
	}
	return out
}
