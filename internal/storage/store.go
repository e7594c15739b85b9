package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/nbodyval/internal/match"
	"github.com/san-kum/nbodyval/internal/validate"
)

// ErrNotFound indicates no session with the requested id.
var ErrNotFound = errors.New("storage: session not found")

const dbName = "history.db"

// timeLayout is fixed width so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	reference   TEXT NOT NULL,
	particles   INTEGER NOT NULL,
	tolerant    INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

-- metric columns hold NULL for NaN or infinite values
CREATE TABLE IF NOT EXISTS scenario_rows (
	session_id     TEXT NOT NULL,
	position       INTEGER NOT NULL,
	label          TEXT NOT NULL,
	outcome        TEXT NOT NULL,
	regime         TEXT NOT NULL,
	threshold      REAL,
	rmse           REAL,
	max_deviation  REAL,
	mean_deviation REAL,
	momentum_drift REAL,
	energy_drift   REAL,
	energy_bound   REAL,
	match_key      TEXT NOT NULL,
	message        TEXT NOT NULL,
	elapsed_ns     INTEGER NOT NULL,
	PRIMARY KEY (session_id, position),
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`

// Store keeps session reports in a SQLite database under baseDir.
type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates baseDir, opens the database and runs migrations.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, dbName))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	// foreign_keys is per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SessionMetadata is the summary line of a stored session.
type SessionMetadata struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Particles int       `json:"particles"`
	Tolerant  bool      `json:"approximate_tolerant"`
	Passed    bool      `json:"passed"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Scenarios int       `json:"scenarios"`
}

// Save stores report under a fresh id, which is also written back to report.ID.
func (s *Store) Save(report *validate.Report) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, reference, particles, tolerant, passed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, report.Reference, report.Particles, report.Tolerant, report.Passed,
		report.Started.UTC().Format(timeLayout), report.Finished.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	for i, row := range report.Rows {
		_, err = tx.Exec(
			`INSERT INTO scenario_rows (session_id, position, label, outcome, regime, threshold, rmse,
			 max_deviation, mean_deviation, momentum_drift, energy_drift, energy_bound, match_key, message, elapsed_ns)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, row.Label, string(row.Outcome), string(row.Regime), nullable(row.Threshold), nullable(row.RMSE),
			nullable(row.MaxDeviation), nullable(row.MeanDeviation), nullable(row.MomentumDrift),
			nullable(row.EnergyDrift), nullable(row.EnergyBound),
			string(row.Key), row.Message, row.Elapsed.Nanoseconds(),
		)
		if err != nil {
			return "", fmt.Errorf("insert row %s: %w", row.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	report.ID = id
	return id, nil
}

// List returns all sessions, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.reference, s.particles, s.tolerant, s.passed, s.started_at, s.finished_at,
		        (SELECT COUNT(*) FROM scenario_rows r WHERE r.session_id = s.id)
		 FROM sessions s ORDER BY s.started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]SessionMetadata, 0)
	for rows.Next() {
		var meta SessionMetadata
		var started, finished string
		if err := rows.Scan(&meta.ID, &meta.Reference, &meta.Particles, &meta.Tolerant, &meta.Passed,
			&started, &finished, &meta.Scenarios); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		meta.Started, _ = time.Parse(timeLayout, started)
		meta.Finished, _ = time.Parse(timeLayout, finished)
		sessions = append(sessions, meta)
	}
	return sessions, rows.Err()
}

// Load returns the full report stored under id.
func (s *Store) Load(id string) (*validate.Report, error) {
	report := &validate.Report{ID: id}
	var started, finished string
	err := s.db.QueryRow(
		`SELECT reference, particles, tolerant, passed, started_at, finished_at FROM sessions WHERE id = ?`, id,
	).Scan(&report.Reference, &report.Particles, &report.Tolerant, &report.Passed, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	report.Started, _ = time.Parse(timeLayout, started)
	report.Finished, _ = time.Parse(timeLayout, finished)

	rows, err := s.db.Query(
		`SELECT label, outcome, regime, threshold, rmse, max_deviation, mean_deviation,
		        momentum_drift, energy_drift, energy_bound, match_key, message, elapsed_ns
		 FROM scenario_rows WHERE session_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	report.Rows = make([]validate.Row, 0)
	for rows.Next() {
		var row validate.Row
		var outcome, regime, key string
		var elapsed int64
		var vals [7]sql.NullFloat64
		if err := rows.Scan(&row.Label, &outcome, &regime, &vals[0], &vals[1], &vals[2],
			&vals[3], &vals[4], &vals[5], &vals[6], &key, &row.Message,
			&elapsed); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Threshold = orNaN(vals[0])
		row.RMSE = orNaN(vals[1])
		row.MaxDeviation = orNaN(vals[2])
		row.MeanDeviation = orNaN(vals[3])
		row.MomentumDrift = orNaN(vals[4])
		row.EnergyDrift = orNaN(vals[5])
		row.EnergyBound = orNaN(vals[6])
		row.Outcome = validate.Outcome(outcome)
		row.Regime = validate.Regime(regime)
		row.Key = match.Key(key)
		row.Elapsed = time.Duration(elapsed)
		report.Rows = append(report.Rows, row)
	}
	return report, rows.Err()
}

// nullable maps non-finite values to NULL; SQLite has no NaN.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// Delete removes a session and its rows.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
