package facts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/minerva/pkg/rulelogic"
)

// SQLiteStore implements Store using an embedded SQLite database, one row
// per fact with the value serialized as JSON. Suitable for single-instance
// deployments where facts must survive restarts.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	mu        sync.RWMutex
	closeOnce sync.Once

	getStmt    *sql.Stmt
	deleteStmt *sql.Stmt
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStoreConfig configures the SQLite fact store.
type SQLiteStoreConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxOpenConns bounds the connection pool.
	// Default: 1 (single writer)
	MaxOpenConns int

	// MaxIdleConns bounds idle pooled connections.
	// Default: 1
	MaxIdleConns int
}

// NewSQLiteStore creates a SQLite fact store with default settings:
// WAL mode, a 5 second busy timeout, and a single-connection pool.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		Path:    path,
		WALMode: true,
	})
}

// NewSQLiteStoreWithConfig creates a SQLite fact store with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 1
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 1
	}

	db, err := sql.Open("sqlite", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func buildDSN(cfg SQLiteStoreConfig) string {
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()),
		"_pragma=synchronous(NORMAL)",
	}
	if cfg.WALMode {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return "file:" + cfg.Path + "?" + strings.Join(params, "&")
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS case_facts (
		case_id TEXT NOT NULL,
		fact_key TEXT NOT NULL,
		fact_value_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (case_id, fact_key)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`
		SELECT fact_key, fact_value_json
		FROM case_facts
		WHERE case_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM case_facts
		WHERE case_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// GetFacts returns all facts recorded for the case. Numeric values come
// back as json.Number, matching how expressions hold numeric literals.
func (s *SQLiteStore) GetFacts(ctx context.Context, caseID string) (rulelogic.FactSet, error) {
	if caseID == "" {
		return nil, fmt.Errorf("case id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.getStmt.QueryContext(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	facts := make(rulelogic.FactSet)
	for rows.Next() {
		var key, valueJSON string
		if err := rows.Scan(&key, &valueJSON); err != nil {
			return nil, fmt.Errorf("failed to scan fact row: %w", err)
		}

		value, err := decodeFactValue(valueJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fact %q: %w", key, err)
		}
		facts[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fact rows: %w", err)
	}

	if len(facts) == 0 {
		return nil, fmt.Errorf("case %q: %w", caseID, ErrCaseNotFound)
	}

	return facts, nil
}

// PutFacts replaces the case's fact set in a single transaction. An empty
// set removes the case.
func (s *SQLiteStore) PutFacts(ctx context.Context, caseID string, facts rulelogic.FactSet) error {
	if caseID == "" {
		return fmt.Errorf("case id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM case_facts WHERE case_id = ?`, caseID); err != nil {
		return fmt.Errorf("failed to clear existing facts: %w", err)
	}

	now := time.Now().Unix()
	for key, value := range facts {
		if key == "" {
			return fmt.Errorf("fact key cannot be empty")
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal fact %q: %w", key, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO case_facts (case_id, fact_key, fact_value_json, updated_at)
			VALUES (?, ?, ?, ?)
		`, caseID, key, string(data), now)
		if err != nil {
			return fmt.Errorf("failed to store fact %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit facts: %w", err)
	}

	return nil
}

// DeleteCase removes all facts for the case. Deleting an unknown case is
// not an error.
func (s *SQLiteStore) DeleteCase(ctx context.Context, caseID string) error {
	if caseID == "" {
		return fmt.Errorf("case id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, caseID); err != nil {
		return fmt.Errorf("failed to delete case facts: %w", err)
	}

	return nil
}

// Close releases the database and prepared statements. Close is
// idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.getStmt != nil {
			s.getStmt.Close()
		}
		if s.deleteStmt != nil {
			s.deleteStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// decodeFactValue decodes a stored JSON value keeping numbers as
// json.Number.
func decodeFactValue(data string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
