package model

// SchemaVersion is bumped whenever the DDL below changes shape.
const SchemaVersion = 1

// The create* constants below create file_entries, indexing_metadata and
// their indexes. Split into table-per-constant the way the teacher's initSchema groups
// its CREATE TABLE statements, but run inside a single transaction by the
// caller (internal/store) rather than as one giant exec, so each step can
// be attributed in an error.
const createEntriesTable = `
CREATE TABLE IF NOT EXISTS file_entries (
	name TEXT NOT NULL,
	full_path TEXT NOT NULL UNIQUE,
	is_directory BOOLEAN NOT NULL,
	file_extension TEXT,
	size INTEGER,
	date_modified REAL NOT NULL,
	date_added REAL NOT NULL
)`

const createEntryIndexes = `
CREATE INDEX IF NOT EXISTS idx_entries_name ON file_entries(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_entries_extension ON file_entries(file_extension) WHERE file_extension IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_entries_size ON file_entries(size);
CREATE INDEX IF NOT EXISTS idx_entries_date_modified ON file_entries(date_modified);
CREATE INDEX IF NOT EXISTS idx_entries_is_directory ON file_entries(is_directory);
`

// createFTSTable is the Unicode-aware full-text index over name. Grounded
// directly on the FTS5 virtual table declaration in other_examples'
// mvp-joe-project-cortex schema.go, adapted from content-indexing to a
// single name column.
const createFTSTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS file_entries_fts USING fts5(
	name,
	content='file_entries',
	content_rowid='rowid',
	tokenize='unicode61'
)
`

// createFTSTriggers keeps file_entries_fts in lockstep with file_entries.
// Grounded on the AFTER INSERT/UPDATE/DELETE trigger set in the same
// cortex schema.go reference, generalized from a single content column to
// the name column and adapted to operate on rowid (fts5 external-content
// table, content='file_entries') rather than a natural key.
const createFTSTriggers = `
CREATE TRIGGER IF NOT EXISTS file_entries_ai AFTER INSERT ON file_entries BEGIN
	INSERT INTO file_entries_fts(rowid, name) VALUES (new.rowid, new.name);
END;
CREATE TRIGGER IF NOT EXISTS file_entries_ad AFTER DELETE ON file_entries BEGIN
	INSERT INTO file_entries_fts(file_entries_fts, rowid, name) VALUES('delete', old.rowid, old.name);
END;
CREATE TRIGGER IF NOT EXISTS file_entries_au AFTER UPDATE ON file_entries BEGIN
	INSERT INTO file_entries_fts(file_entries_fts, rowid, name) VALUES('delete', old.rowid, old.name);
	INSERT INTO file_entries_fts(rowid, name) VALUES (new.rowid, new.name);
END;
`

// createMetadataTable is the single-row indexing status table.
const createMetadataTable = `
CREATE TABLE IF NOT EXISTS indexing_metadata (
	id INTEGER PRIMARY KEY,
	is_indexed BOOLEAN NOT NULL DEFAULT 0,
	last_indexed_date REAL,
	indexed_paths TEXT,
	total_files_indexed INTEGER DEFAULT 0,
	indexing_version INTEGER DEFAULT 1,
	last_event_id INTEGER
)
`

const seedMetadataRow = `
INSERT OR IGNORE INTO indexing_metadata (id, is_indexed, indexing_version) VALUES (1, 0, 1)
`

// createConfigTable backs internal/config's hot-reloadable tunables
// (worker counts, batch size, debounce window). Grounded on the
// teacher's internal/core/db.go config table plus its version column,
// polled by config.Manager.Watch instead of re-read on every access.
const createConfigTable = `
CREATE TABLE IF NOT EXISTS config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 0
)
`

// createConfigVersionTrigger bumps version on every update of an existing
// key (a fresh INSERT gets its version from config.Manager.SetString's
// own statement) so config.Manager's poll loop can detect changes with a single cheap
// MAX(version) query instead of diffing the whole table.
const createConfigVersionTrigger = `
CREATE TRIGGER IF NOT EXISTS config_version_bump AFTER UPDATE ON config BEGIN
	UPDATE config SET version = (SELECT COALESCE(MAX(version), 0) + 1 FROM config) WHERE key = new.key;
END;
`

// Statements returns the ordered list of DDL statements that make up the
// schema. internal/store executes them in order inside the init
// transaction used at store-open time.
func Statements() []string {
	return []string{
		createEntriesTable,
		createEntryIndexes,
		createFTSTable,
		createFTSTriggers,
		createMetadataTable,
		seedMetadataRow,
		createConfigTable,
		createConfigVersionTrigger,
	}
}
