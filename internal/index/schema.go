// ABOUTME: SQLite schema for the collection-scoped vector index
// ABOUTME: Collections pin a vector dimension; records are keyed by (collection, chunk id)
package index

// Schema contains all SQL statements for database initialization.
const Schema = `
-- Collections pin the vector dimensionality for their lifetime
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    dimension INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Index records (chunk + vector), upsert keyed by chunk id within a collection
CREATE TABLE IF NOT EXISTS records (
    id TEXT NOT NULL,
    collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
    source_document TEXT NOT NULL,
    sequence_number INTEGER NOT NULL,
    text TEXT NOT NULL,
    token_count INTEGER NOT NULL,
    vector BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_records_source ON records(collection, source_document);
`

// SchemaVersion is the current schema version for migrations.
const SchemaVersion = 1
