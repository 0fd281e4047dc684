// Package snapshot writes a one-way SQLite diagnostic dump of a state.State,
// letting a run's intermediate wavefunction be inspected with ordinary SQL
// tooling without going through the text state file format.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/spin"
	"github.com/twesterhout/walking-lanczos/state"
)

const tableConfigs = "configs"

// Writer holds an open connection to a snapshot database.
type Writer struct {
	path string
	db   *sql.DB
}

// Open creates (or replaces) the snapshot database at path.
func Open(path string) (*Writer, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, qerr.Wrap(err, qerr.IOError, "opening snapshot database")
	}
	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Writer{path: path, db: db}, nil
}

func prepare(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableConfigs)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return qerr.Wrap(err, qerr.IOError, "dropping stale snapshot table")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (
		lo INTEGER,
		hi INTEGER,
		bits INTEGER,
		re REAL,
		im REAL,
		PRIMARY KEY (lo, hi)
	) STRICT`, tableConfigs)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return qerr.Wrap(err, qerr.IOError, "creating snapshot table")
	}
	return nil
}

// Close releases the underlying database handle. The database file itself
// is left on disk for later inspection.
func (w *Writer) Close() error {
	if err := w.db.Close(); err != nil {
		return qerr.Wrap(err, qerr.IOError, "closing snapshot database")
	}
	return nil
}

// Write dumps every entry of s into the snapshot, replacing any prior
// contents. It is a single-shot operation, not an incremental append.
func (w *Writer) Write(iteration int, s *state.State) error {
	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return qerr.Wrap(err, qerr.IOError, "beginning snapshot transaction")
	}

	sqlStr := fmt.Sprintf(`DELETE FROM %s`, tableConfigs)
	if _, err := tx.ExecContext(ctx, sqlStr); err != nil {
		tx.Rollback()
		return qerr.Wrap(err, qerr.IOError, "clearing snapshot table")
	}

	insertStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (lo, hi, bits, re, im) VALUES (?, ?, ?, ?, ?)`, tableConfigs)
	var rangeErr error
	s.ForEach(func(c spin.Configuration, coeff complex128) {
		if rangeErr != nil {
			return
		}
		lo, hi := c.Words()
		if _, err := tx.ExecContext(ctx, insertStr, int64(lo), int64(hi), c.Len(), real(coeff), imag(coeff)); err != nil {
			rangeErr = errors.Wrap(err, "inserting snapshot row")
		}
	})
	if rangeErr != nil {
		tx.Rollback()
		return qerr.Wrap(rangeErr, qerr.IOError, "writing snapshot entries")
	}

	if err := tx.Commit(); err != nil {
		return qerr.Wrap(err, qerr.IOError, "committing snapshot transaction")
	}
	return nil
}

// Len returns the number of configurations currently stored in the
// snapshot, used by tests and diagnostics without re-parsing the state.
func (w *Writer) Len() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	sqlStr := fmt.Sprintf(`SELECT count(1) FROM %s`, tableConfigs)
	var n int
	if err := w.db.QueryRowContext(ctx, sqlStr).Scan(&n); err != nil {
		return 0, qerr.Wrap(err, qerr.IOError, "counting snapshot rows")
	}
	return n, nil
}
