package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the run journal in a local sqlite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates an unopened store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the sqlite database. Use ":memory:" for tests. A single
// connection is enforced so an in-memory database is shared.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// CreateRun starts a journal entry for one retailer extraction.
func (s *SQLiteStore) CreateRun(retailer string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Retailer:  retailer,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, retailer, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Retailer, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun closes a journal entry with a terminal status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun returns one run by id.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	err := s.db.QueryRow(
		`SELECT id, retailer, status, started_at, completed_at, error FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Retailer, &run.Status, &run.StartedAt, &run.CompletedAt, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recent run for a retailer.
func (s *SQLiteStore) LatestRun(retailer string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	err := s.db.QueryRow(
		`SELECT id, retailer, status, started_at, completed_at, error FROM runs
		 WHERE retailer = ? ORDER BY started_at DESC LIMIT 1`, retailer,
	).Scan(&run.ID, &run.Retailer, &run.Status, &run.StartedAt, &run.CompletedAt, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no runs for retailer: %s", retailer)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// RecordParseError journals one failed document unit.
func (s *SQLiteStore) RecordParseError(runID, fileName, sheetName, message string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO parse_errors (id, run_id, file_name, sheet_name, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		generateID(), runID, fileName, sheetName, message, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record parse error: %w", err)
	}
	return nil
}

// ParseErrorsForRun returns a run's parse errors in insertion order.
func (s *SQLiteStore) ParseErrorsForRun(runID string) ([]ParseError, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, file_name, sheet_name, message, created_at
		 FROM parse_errors WHERE run_id = ? ORDER BY created_at, id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query parse errors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ParseError
	for rows.Next() {
		var pe ParseError
		if err := rows.Scan(&pe.ID, &pe.RunID, &pe.FileName, &pe.SheetName, &pe.Message, &pe.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parse error: %w", err)
		}
		out = append(out, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parse errors: %w", err)
	}
	return out, nil
}

// HasErrors reports whether a run recorded any parse errors.
func (s *SQLiteStore) HasErrors(runID string) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database not opened")
	}

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM parse_errors WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count parse errors: %w", err)
	}
	return count > 0, nil
}
