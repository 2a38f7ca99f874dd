package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// SaveState inserts a new snapshot keyed by version. Versions are never
// overwritten: a collision returns ErrVersionExists and leaves the stored
// snapshot intact. Other failures wrap ErrPersistence.
func (s *Store) SaveState(ctx context.Context, version string, entries map[string]string) error {
	if version == "" {
		return types.ErrInvalidVersion
	}
	state, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrPersistence, err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO saved_states (version, state) VALUES (?, ?)", version, state)
		if err != nil {
			return fmt.Errorf("inserting state %s: %w", version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("state saved", zapVersion(version))
	return nil
}

// LoadState returns the entries saved under version.
// Returns ErrNotFound if no snapshot has that version.
func (s *Store) LoadState(ctx context.Context, version string) (map[string]string, error) {
	snap, err := s.Snapshot(ctx, version)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// Snapshot returns the full snapshot saved under version.
// Returns ErrNotFound if no snapshot has that version.
func (s *Store) Snapshot(ctx context.Context, version string) (*types.Snapshot, error) {
	var snap *types.Snapshot
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var state, ts string
		err := tx.QueryRowContext(ctx,
			"SELECT state, timestamp FROM saved_states WHERE version = ?", version,
		).Scan(&state, &ts)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading state %s: %w", version, err)
		}

		entries, err := decodeEntries(state)
		if err != nil {
			return err
		}
		capturedAt, err := parseTimestamp(ts)
		if err != nil {
			return err
		}
		snap = &types.Snapshot{Version: version, CapturedAt: capturedAt, Entries: entries}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// StateExists reports whether a snapshot with version is stored.
func (s *Store) StateExists(ctx context.Context, version string) (bool, error) {
	var n int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM saved_states WHERE version = ?", version,
		).Scan(&n)
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SavedStatesWithDates lists every snapshot version with its capture time in
// insertion order. Insertion order is not guaranteed to be chronological
// when clocks skew.
func (s *Store) SavedStatesWithDates(ctx context.Context) ([]types.SavedState, error) {
	var out []types.SavedState
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT version, timestamp FROM saved_states ORDER BY id")
		if err != nil {
			return fmt.Errorf("listing states: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var version, ts string
			if err := rows.Scan(&version, &ts); err != nil {
				return fmt.Errorf("scanning state: %w", err)
			}
			capturedAt, err := parseTimestamp(ts)
			if err != nil {
				return err
			}
			out = append(out, types.SavedState{Version: version, CapturedAt: capturedAt})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SavedVersions lists every snapshot version in insertion order.
func (s *Store) SavedVersions(ctx context.Context) ([]string, error) {
	states, err := s.SavedStatesWithDates(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(states))
	for _, st := range states {
		versions = append(versions, st.Version)
	}
	return versions, nil
}

// LastVersion returns the most recently inserted version, or
// EmptyStoreVersion ("0") when the store holds no snapshots.
func (s *Store) LastVersion(ctx context.Context) (string, error) {
	version := types.EmptyStoreVersion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"SELECT version FROM saved_states ORDER BY id DESC LIMIT 1",
		).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return version, nil
}
