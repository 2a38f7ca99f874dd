// Snapshot and operation-log records kept by the snapshot store.
package types

import "time"

// Snapshot is a named capture of reference paths at one point in time.
// Entries are immutable once persisted.
type Snapshot struct {
	Version    string            `json:"version"`
	CapturedAt time.Time         `json:"captured_at"`
	Entries    map[string]string `json:"entries"`
}

// SavedState is one row of the saved-version listing.
type SavedState struct {
	Version    string    `json:"version"`
	CapturedAt time.Time `json:"captured_at"`
}

// RelinkOperationRecord is one entry of the append-only relink log.
type RelinkOperationRecord struct {
	// ID is the autonumber row ID.
	ID int64 `json:"id"`

	// OperationID is a UUID v7 assigned when the record is appended.
	OperationID string `json:"operation_id"`

	Timestamp   time.Time `json:"timestamp"`
	Pattern     string    `json:"pattern"`
	Replacement string    `json:"replacement"`

	// AffectedCount is the number of references rewritten; nil when unknown.
	AffectedCount *int `json:"affected_count,omitempty"`
}

// Version kinds accepted by the engine's version generator.
const (
	VersionTimestamp     = "timestamp"
	VersionUserInput     = "user_input"
	VersionAutoIncrement = "auto_increment"
)

// EmptyStoreVersion is returned as the last version of a store with no
// snapshots.
const EmptyStoreVersion = "0"
