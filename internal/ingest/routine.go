package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/wtrack/internal/model"
)

// RoutineFormat selects the routine file syntax.
type RoutineFormat int

const (
	// RoutineJSON is a JSON object of day label to exercise list.
	RoutineJSON RoutineFormat = iota
	// RoutineYAML is a YAML mapping of day label to exercise list.
	RoutineYAML
)

// RoutineFormatFromPath picks the format from the file extension.
func RoutineFormatFromPath(path string) RoutineFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return RoutineYAML
	default:
		return RoutineJSON
	}
}

// ReadRoutine parses a routine, keeping days in file order.
func ReadRoutine(r io.Reader, format RoutineFormat) (model.Routine, error) {
	switch format {
	case RoutineYAML:
		return readRoutineYAML(r)
	default:
		return readRoutineJSON(r)
	}
}

func readRoutineJSON(r io.Reader) (model.Routine, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return model.Routine{}, fmt.Errorf("decode routine: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return model.Routine{}, fmt.Errorf("decode routine: expected an object of day -> exercises")
	}
	var routine model.Routine
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return model.Routine{}, fmt.Errorf("decode routine: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return model.Routine{}, fmt.Errorf("decode routine: unexpected token %v", tok)
		}
		var exercises []string
		if err := dec.Decode(&exercises); err != nil {
			return model.Routine{}, fmt.Errorf("decode routine day %q: %w", label, err)
		}
		routine.Days = append(routine.Days, model.RoutineDay{Label: label, Exercises: exercises})
	}
	if _, err := dec.Token(); err != nil {
		return model.Routine{}, fmt.Errorf("decode routine: %w", err)
	}
	return routine, nil
}

func readRoutineYAML(r io.Reader) (model.Routine, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return model.Routine{}, nil
		}
		return model.Routine{}, fmt.Errorf("decode routine: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return model.Routine{}, fmt.Errorf("decode routine: expected a mapping of day -> exercises")
	}
	var routine model.Routine
	for i := 0; i+1 < len(root.Content); i += 2 {
		label := root.Content[i].Value
		var exercises []string
		if err := root.Content[i+1].Decode(&exercises); err != nil {
			return model.Routine{}, fmt.Errorf("decode routine day %q: %w", label, err)
		}
		routine.Days = append(routine.Days, model.RoutineDay{Label: label, Exercises: exercises})
	}
	return routine, nil
}
