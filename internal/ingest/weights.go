// Package ingest parses and validates weight logs, gym logs and routines.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/verte-zerg/wtrack/internal/model"
)

var (
	// ErrMissingColumn reports a required header column that is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidRow reports a row that could not be parsed or validated.
	ErrInvalidRow = errors.New("invalid row")
)

// DateLayout is the layout used when writing dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
}

// ParseDate accepts the supported date layouts and truncates to the day.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseWeight parses a finite decimal number, accepting ',' as decimal
// separator.
func ParseWeight(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("weight %q is not a finite number", value)
	}
	return v, nil
}

// ReadWeights parses a CSV weight log with "date" and "weight" columns.
// Rows with an empty weight are skipped. Invalid rows are excluded and
// reported in the returned error; the valid rows are still returned, sorted
// by date.
func ReadWeights(r io.Reader) ([]model.WeightObservation, error) {
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
	cols := headerIndex(header, strings.ToLower)
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("%w: date", ErrMissingColumn)
	}
	weightCol, ok := cols["weight"]
	if !ok {
		return nil, fmt.Errorf("%w: weight", ErrMissingColumn)
	}

	var (
		out     []model.WeightObservation
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
		rawWeight := field(record, weightCol)
		if strings.TrimSpace(rawWeight) == "" {
			continue
		}
		date, err := ParseDate(field(record, dateCol))
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("%w %d: %v", ErrInvalidRow, line, err))
			continue
		}
		weight, err := ParseWeight(rawWeight)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("%w %d: weight %q is not a number", ErrInvalidRow, line, rawWeight))
			continue
		}
		if weight <= 0 {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("%w %d: weight must be positive", ErrInvalidRow, line))
			continue
		}
		out = append(out, model.WeightObservation{Date: date, Weight: weight})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, rowErrs
}

// WriteWeights writes observations as a "date,weight" CSV.
func WriteWeights(w io.Writer, obs []model.WeightObservation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "weight"}); err != nil {
		return err
	}
	for _, o := range obs {
		row := []string{
			o.Date.Format(DateLayout),
			strconv.FormatFloat(o.Weight, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func headerIndex(header []string, norm func(string) string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if norm != nil {
			h = norm(h)
		}
		if _, exists := cols[h]; !exists {
			cols[h] = i
		}
	}
	return cols
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
