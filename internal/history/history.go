// Package history records fired transitions in sqlite for the control surface.
// This is an audit trail only; the schedule itself is recomputed from the
// wall clock and configuration on every start.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const initSchema = `
  CREATE TABLE IF NOT EXISTS transition (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    fired_at TIMESTAMP NOT NULL,
    kind TEXT NOT NULL,
    source TEXT NOT NULL
  );
`

// Entry is a single recorded transition.
type Entry struct {
	FiredAt time.Time
	Kind    string // "ON" / "OFF"
	Source  string // "startup", "schedule", "off-time change"
}

type Repo struct {
	logger *log.Logger
	db     *sql.DB
}

func NewRepo(logger *log.Logger, db *sql.DB) (*Repo, error) {
	if _, err := db.Exec(initSchema); err != nil {
		return nil, fmt.Errorf("error initialising transition schema: %w", err)
	}
	return &Repo{logger: logger, db: db}, nil
}

// Record stores a fired transition.
func (r *Repo) Record(firedAt time.Time, kind, source string) error {
	_, err := r.db.Exec(
		`INSERT INTO transition (fired_at, kind, source) VALUES ($1, $2, $3);`,
		firedAt, kind, source,
	)
	if err != nil {
		return fmt.Errorf("error recording transition (%s): %w", kind, err)
	}
	return nil
}

// Recent returns up to limit transitions, newest first.
func (r *Repo) Recent(limit int) ([]Entry, error) {
	rows, err := r.db.Query(
		`SELECT fired_at, kind, source FROM transition ORDER BY id DESC LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("error reading transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.FiredAt, &e.Kind, &e.Source); err != nil {
			return nil, fmt.Errorf("error scanning transition: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
