package decision

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the decision database schema.
const Schema = `
-- Decision records table
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,

    -- Rule set provenance
    ruleset_id TEXT NOT NULL,
    ruleset_version TEXT NOT NULL,

    -- Outcomes
    final_outcome TEXT NOT NULL,
    rule_outcome TEXT NOT NULL,
    ai_outcome TEXT,
    ai_model TEXT,

    -- Reconciliation
    confidence REAL NOT NULL,
    conflict_detected BOOLEAN NOT NULL,
    requires_human_review BOOLEAN NOT NULL,
    review_id TEXT,
    reasoning_summary TEXT NOT NULL,

    -- Rule evaluation detail
    requirements_passed INTEGER NOT NULL,
    requirements_total INTEGER NOT NULL,
    missing_facts TEXT,

    created_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for the API read paths and the retention pruner
CREATE INDEX IF NOT EXISTS idx_decisions_case_id ON decisions(case_id);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
