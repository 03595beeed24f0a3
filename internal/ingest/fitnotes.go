package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/verte-zerg/wtrack/internal/model"
)

var fitnotesColumns = []string{"Date", "Exercise", "Weight", "Reps"}

// ReadExerciseSets parses a FitNotes CSV export. Column names are matched
// exactly. An empty Weight cell counts as a bodyweight set of 0.
func ReadExerciseSets(r io.Reader) ([]model.ExerciseSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}
	cols := headerIndex(header, nil)
	for _, name := range fitnotesColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var (
		out     []model.ExerciseSet
		rowErrs error
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("%w %d: %v", ErrInvalidRow, line, err))
			continue
		}
		set, err := parseSet(record, cols)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("%w %d: %v", ErrInvalidRow, line, err))
			continue
		}
		out = append(out, set)
	}
	return out, rowErrs
}

func parseSet(record []string, cols map[string]int) (model.ExerciseSet, error) {
	date, err := ParseDate(field(record, cols["Date"]))
	if err != nil {
		return model.ExerciseSet{}, err
	}
	exercise := field(record, cols["Exercise"])
	if exercise == "" {
		return model.ExerciseSet{}, fmt.Errorf("exercise is empty")
	}
	weight := 0.0
	if raw := strings.TrimSpace(field(record, cols["Weight"])); raw != "" {
		weight, err = ParseWeight(raw)
		if err != nil {
			return model.ExerciseSet{}, fmt.Errorf("weight %q is not a number", raw)
		}
	}
	if weight < 0 {
		return model.ExerciseSet{}, fmt.Errorf("weight must be >= 0")
	}
	rawReps := strings.TrimSpace(field(record, cols["Reps"]))
	reps, err := strconv.Atoi(rawReps)
	if err != nil {
		return model.ExerciseSet{}, fmt.Errorf("reps %q is not an integer", rawReps)
	}
	if reps < 0 {
		return model.ExerciseSet{}, fmt.Errorf("reps must be >= 0")
	}
	return model.ExerciseSet{
		Date:     date,
		Exercise: exercise,
		Weight:   weight,
		Reps:     reps,
	}, nil
}
