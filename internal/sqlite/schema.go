package sqlite

// Schema DDL. Timestamps are filled by SQLite (CURRENT_TIMESTAMP, UTC) and
// stored as TEXT so they round-trip through the driver unchanged.
const (
	createRelinkHistory = `CREATE TABLE IF NOT EXISTS relink_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    operation_id TEXT NOT NULL,
    timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    old_path_regex TEXT NOT NULL,
    new_path TEXT NOT NULL,
    affected_nodes INTEGER
);`

	createSavedStates = `CREATE TABLE IF NOT EXISTS saved_states (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    version TEXT NOT NULL UNIQUE,
    state TEXT NOT NULL,
    timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
)

// schemaDDL lists all statements applied on Attach.
var schemaDDL = []string{
	createRelinkHistory,
	createSavedStates,
}
