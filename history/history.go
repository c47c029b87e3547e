// Package history records supervision runs and their events in a local
// SQLite database. The journal is purely observational: the supervisor
// works identically with history disabled, and recording failures are
// logged, never propagated.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yllada/mullvad-supervisor/common"
)

// Event kinds recorded by the supervisor.
const (
	KindRunStart      = "run-start"
	KindRunEnd        = "run-end"
	KindState         = "state"
	KindUpdateAttempt = "update-attempt"
	KindUpdateOK      = "update-ok"
	KindUpdateFailed  = "update-failed"
	KindAccountSet    = "account-set"
	KindRemediation   = "remediation"
	KindFactoryReset  = "factory-reset"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL,
	at      TIMESTAMP NOT NULL,
	kind    TEXT NOT NULL,
	detail  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_run_id ON events(run_id);
CREATE INDEX IF NOT EXISTS events_at ON events(at);
`

// Event is one recorded supervision event.
type Event struct {
	ID     int64
	RunID  string
	At     time.Time
	Kind   string
	Detail string
}

// Store is the SQLite-backed event journal.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the journal at the given path.
// Use ":memory:" for an ephemeral journal.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun starts a new supervision run and returns its journal handle.
func (s *Store) BeginRun() *Run {
	run := &Run{store: s, ID: uuid.NewString()}
	run.Event(KindRunStart, "")
	return run
}

// Recent returns the newest events, most recent first.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, at, kind, detail FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunID, &e.At, &e.Kind, &e.Detail); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// record inserts one event row.
func (s *Store) record(runID, kind, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO events (run_id, at, kind, detail) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC(), kind, detail)
	return err
}

// Run journals events for a single supervision run.
type Run struct {
	store *Store
	ID    string
}

// Event records an event against this run. Failures are logged and
// swallowed: the journal must never interfere with supervision.
func (r *Run) Event(kind, detail string) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.record(r.ID, kind, detail); err != nil {
		common.LogWarn("Could not record history event %s: %v", kind, err)
	}
}

// End marks the run finished with its outcome.
func (r *Run) End(outcome string) {
	r.Event(KindRunEnd, outcome)
}
