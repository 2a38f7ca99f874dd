package types

import "context"

// SnapshotStore persists path snapshots and the relink operation log.
// Attach must be called before any other method; operations on a detached
// store return ErrStoreDetached.
type SnapshotStore interface {
	// Attach validates config and opens the store at config.DataDir.
	// Returns ErrAlreadyAttached if already attached.
	Attach(config StoreConfig) error

	// Detach releases the store. Detaching twice is not an error.
	Detach() error

	// LogRelinkOperation appends one record to the relink log.
	LogRelinkOperation(ctx context.Context, pattern, replacement string, affected *int) (RelinkOperationRecord, error)

	// RelinkHistory returns the relink log in append order.
	RelinkHistory(ctx context.Context) ([]RelinkOperationRecord, error)

	// SaveState stores entries under version. Returns ErrVersionExists if
	// the version is taken.
	SaveState(ctx context.Context, version string, entries map[string]string) error

	// LoadState returns the entries stored under version, or ErrNotFound.
	LoadState(ctx context.Context, version string) (map[string]string, error)

	// StateExists reports whether version has been saved.
	StateExists(ctx context.Context, version string) (bool, error)

	// SavedStatesWithDates lists saved versions in insertion order.
	SavedStatesWithDates(ctx context.Context) ([]SavedState, error)

	// LastVersion returns the most recently saved version, or
	// EmptyStoreVersion when nothing has been saved.
	LastVersion(ctx context.Context) (string, error)
}
