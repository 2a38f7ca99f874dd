// Package sqlite provides the public API for the SQLite snapshot store.
// This package exposes the factory function for creating SQLite stores
// while keeping implementation details internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/internal/sqlite"
	"github.com/mesh-intelligence/relink/pkg/types"
)

// NewStore creates a new SQLite snapshot store. A nil logger discards
// diagnostics. The store is not attached; call Attach with a StoreConfig to
// initialize.
//
// Example:
//
//	store := sqlite.NewStore(nil)
//	err := store.Attach(types.StoreConfig{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/relink",
//	})
//	defer store.Detach()
func NewStore(logger *zap.Logger) types.SnapshotStore {
	return sqlite.NewStore(sqlite.WithLogger(logger))
}
