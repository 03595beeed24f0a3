// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/wtrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	dayLayout  = "2006-01-02"
	versionKey = "dataset_version"
)

// Store wraps SQLite access for the weight log and gym sets.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			logrus.Warnf("close db after failed migration: %v", cerr)
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weights (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			weight REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exercise_sets (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			exercise TEXT NOT NULL,
			weight REAL NOT NULL,
			reps INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_weights_date ON weights(date);`,
		`CREATE INDEX IF NOT EXISTS idx_exercise_sets_exercise_date ON exercise_sets(exercise, date);`,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('dataset_version', 0);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn in a transaction and bumps the dataset version before commit.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				logrus.Warnf("rollback: %v", rerr)
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = ?`, versionKey); err != nil {
		return err
	}
	return tx.Commit()
}

// AddWeight appends a single observation.
func (s *Store) AddWeight(ctx context.Context, obs model.WeightObservation) error {
	return s.AppendWeights(ctx, []model.WeightObservation{obs})
}

// AppendWeights appends observations, keeping existing rows.
func (s *Store) AppendWeights(ctx context.Context, obs []model.WeightObservation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertWeights(ctx, tx, obs)
	})
}

// ReplaceWeights discards the weight log and stores obs in its place.
func (s *Store) ReplaceWeights(ctx context.Context, obs []model.WeightObservation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM weights`); err != nil {
			return err
		}
		return insertWeights(ctx, tx, obs)
	})
}

func insertWeights(ctx context.Context, tx *sql.Tx, obs []model.WeightObservation) error {
	if len(obs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO weights (date, weight) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			logrus.Debugf("close statement: %v", cerr)
		}
	}()
	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.Date.Format(dayLayout), o.Weight); err != nil {
			return err
		}
	}
	return nil
}

// DeleteWeightsOn removes every observation logged on day and reports how
// many rows were removed. The dataset version only changes when rows go.
func (s *Store) DeleteWeightsOn(ctx context.Context, day time.Time) (int64, error) {
	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM weights WHERE date = ?`, day.Format(dayLayout))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if removed == 0 {
			return errNothingChanged
		}
		return nil
	})
	if errors.Is(err, errNothingChanged) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return removed, nil
}

var errNothingChanged = errors.New("nothing changed")

// Version returns the current dataset version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, versionKey).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// LoadDataset returns the weight log ordered by date, then insertion order.
func (s *Store) LoadDataset(ctx context.Context, since *time.Time) (model.Dataset, error) {
	version, err := s.Version(ctx)
	if err != nil {
		return model.Dataset{}, err
	}
	clauses := []string{"1=1"}
	args := []any{}
	if since != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, since.Format(dayLayout))
	}
	query := fmt.Sprintf(`SELECT date, weight FROM weights WHERE %s ORDER BY date ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logrus.Debugf("close rows: %v", cerr)
		}
	}()

	ds := model.Dataset{Version: version}
	for rows.Next() {
		var date string
		var obs model.WeightObservation
		if err := rows.Scan(&date, &obs.Weight); err != nil {
			return model.Dataset{}, err
		}
		parsed, err := time.Parse(dayLayout, date)
		if err != nil {
			return model.Dataset{}, err
		}
		obs.Date = parsed
		ds.Observations = append(ds.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// ReplaceExerciseSets discards stored gym sets and stores sets in their place.
func (s *Store) ReplaceExerciseSets(ctx context.Context, sets []model.ExerciseSet) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_sets`); err != nil {
			return err
		}
		if len(sets) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO exercise_sets (date, exercise, weight, reps) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				logrus.Debugf("close statement: %v", cerr)
			}
		}()
		for _, set := range sets {
			if _, err := stmt.ExecContext(ctx, set.Date.Format(dayLayout), set.Exercise, set.Weight, set.Reps); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListExerciseSets returns every stored gym set in log order.
func (s *Store) ListExerciseSets(ctx context.Context) ([]model.ExerciseSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, exercise, weight, reps FROM exercise_sets ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logrus.Debugf("close rows: %v", cerr)
		}
	}()

	var sets []model.ExerciseSet
	for rows.Next() {
		var date string
		var set model.ExerciseSet
		if err := rows.Scan(&date, &set.Exercise, &set.Weight, &set.Reps); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(dayLayout, date)
		if err != nil {
			return nil, err
		}
		set.Date = parsed
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}
