package decision

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/minerva/pkg/eligibility"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/decisions.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// defaultDeleteBatchSize bounds a single retention delete when the caller
// does not specify a batch size.
const defaultDeleteBatchSize = 500

// defaultListLimit caps ListByCase results when the caller does not specify
// a limit.
const defaultListLimit = 100

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, NewStorageError("sqlite", "open", errors.New("database path is empty"))
	}

	logger := slog.Default().With("component", "decision.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("decision storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// recordColumns is the column list shared by the read paths. Order must match
// scanRecord.
const recordColumns = `id, case_id, ruleset_id, ruleset_version,
	final_outcome, rule_outcome, ai_outcome, ai_model,
	confidence, conflict_detected, requires_human_review, review_id, reasoning_summary,
	requirements_passed, requirements_total, missing_facts, created_at`

// Persist writes a decision record to the database.
func (s *SQLiteStorage) Persist(ctx context.Context, record *Record) error {
	if record.ID == "" {
		return NewStorageError("sqlite", "persist", errors.New("record has no id"))
	}

	missingFacts, _ := json.Marshal(record.MissingFacts)

	query := `
		INSERT INTO decisions (` + recordColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Store empty optional fields as NULL so reads distinguish "no
	// judgment" from an empty string.
	var aiOutcome, aiModel, reviewID interface{}
	if record.AIOutcome != "" {
		aiOutcome = string(record.AIOutcome)
	}
	if record.AIModel != "" {
		aiModel = record.AIModel
	}
	if record.ReviewID != "" {
		reviewID = record.ReviewID
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.CaseID, record.RuleSetID, record.RuleSetVersion,
		string(record.FinalOutcome), string(record.RuleOutcome), aiOutcome, aiModel,
		record.Confidence, record.ConflictDetected, record.RequiresHumanReview, reviewID, record.ReasoningSummary,
		record.RequirementsPassed, record.RequirementsTotal, string(missingFacts), record.CreatedAt.UTC(),
	)
	if err != nil {
		return NewStorageError("sqlite", "persist", err)
	}

	return nil
}

// GetByID retrieves a single decision record.
func (s *SQLiteStorage) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM decisions WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision %q: %w", id, ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get", err)
	}

	return record, nil
}

// ListByCase retrieves the most recent decision records for a case, newest
// first.
func (s *SQLiteStorage) ListByCase(ctx context.Context, caseID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + recordColumns + ` FROM decisions
		WHERE case_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, caseID, limit)
	if err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}

	return records, nil
}

// AttachReviewID links an accepted human-review identifier to a persisted
// record.
func (s *SQLiteStorage) AttachReviewID(ctx context.Context, id, reviewID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE decisions SET review_id = ? WHERE id = ?", reviewID, id)
	if err != nil {
		return NewStorageError("sqlite", "attach_review", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "attach_review", err)
	}
	if affected == 0 {
		return fmt.Errorf("decision %q: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteOlderThan removes all records created before the cutoff, in batches
// of at most batchSize. Returns the total number of records deleted.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultDeleteBatchSize
	}

	query := `
		DELETE FROM decisions WHERE id IN (
			SELECT id FROM decisions WHERE created_at < ? ORDER BY created_at LIMIT ?
		)
	`

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		result, err := s.db.ExecContext(ctx, query, cutoff.UTC(), batchSize)
		if err != nil {
			return total, NewStorageError("sqlite", "delete", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return total, NewStorageError("sqlite", "delete", err)
		}
		total += deleted

		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

// Count returns the total number of stored decision records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions").Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("decision storage closed")
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a database row into a Record.
func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var finalOutcome, ruleOutcome string
	var aiOutcome, aiModel, reviewID sql.NullString
	var missingFacts sql.NullString

	err := row.Scan(
		&record.ID, &record.CaseID, &record.RuleSetID, &record.RuleSetVersion,
		&finalOutcome, &ruleOutcome, &aiOutcome, &aiModel,
		&record.Confidence, &record.ConflictDetected, &record.RequiresHumanReview, &reviewID, &record.ReasoningSummary,
		&record.RequirementsPassed, &record.RequirementsTotal, &missingFacts, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.FinalOutcome = eligibility.Outcome(finalOutcome)
	record.RuleOutcome = eligibility.Outcome(ruleOutcome)
	if aiOutcome.Valid {
		record.AIOutcome = eligibility.Outcome(aiOutcome.String)
	}
	if aiModel.Valid {
		record.AIModel = aiModel.String
	}
	if reviewID.Valid {
		record.ReviewID = reviewID.String
	}

	if missingFacts.Valid && missingFacts.String != "" {
		if err := json.Unmarshal([]byte(missingFacts.String), &record.MissingFacts); err != nil {
			return nil, fmt.Errorf("decode missing_facts: %w", err)
		}
	}
	if record.MissingFacts == nil {
		record.MissingFacts = []string{}
	}

	return &record, nil
}
