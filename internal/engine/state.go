package engine

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/internal/metrics"
	"github.com/mesh-intelligence/relink/pkg/types"
)

// SaveState captures the current path of each resolvable reference in ids
// and stores it under version. Unresolvable IDs are skipped. It returns false
// when the version already exists or the store fails; existing versions are
// never overwritten.
func (e *Engine) SaveState(ctx context.Context, version string, ids []string) bool {
	const op = "save_state"
	start := e.now()

	entries := make(map[string]string, len(ids))
	for _, id := range ids {
		p, err := e.provider.Path(id)
		if err != nil {
			e.logger.Warn("skipping reference", zap.String("id", id), zap.Error(err))
			continue
		}
		entries[id] = p
	}

	if err := e.store.SaveState(ctx, version, entries); err != nil {
		if errors.Is(err, types.ErrVersionExists) {
			e.logger.Warn("version already exists", zap.String("version", version))
		} else {
			e.logger.Error("failed to save state", zap.String("version", version), zap.Error(err))
		}
		e.fail(ctx, op, start, err)
		return false
	}

	e.logger.Info("state saved", zap.String("version", version), zap.Int("entries", len(entries)))
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeRewritten, len(entries))
	e.metrics.RecordOperation(ctx, op, metrics.StatusSuccess, e.since(start))
	e.refreshSnapshotCount(ctx)
	return true
}

// LoadState writes the paths stored under version back to the graph and
// returns the stored mapping. References that no longer exist are skipped
// and logged; the returned mapping is the one originally saved, whether or
// not every entry could be written. An unknown version or a store failure
// returns nil, false with nothing written.
func (e *Engine) LoadState(ctx context.Context, version string) (map[string]string, bool) {
	const op = "load_state"
	start := e.now()

	entries, err := e.store.LoadState(ctx, version)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			e.logger.Info("no state found", zap.String("version", version))
		} else {
			e.logger.Error("failed to load state", zap.String("version", version), zap.Error(err))
		}
		e.fail(ctx, op, start, err)
		return nil, false
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	restored, skipped := 0, 0
	for _, id := range ids {
		if err := e.provider.SetPath(id, entries[id]); err != nil {
			e.logger.Warn("reference not restored, skipping", zap.String("id", id), zap.Error(err))
			skipped++
			continue
		}
		restored++
	}

	e.logger.Info("state loaded", zap.String("version", version),
		zap.Int("restored", restored), zap.Int("skipped", skipped))
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeRewritten, restored)
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeSkipped, skipped)
	e.metrics.RecordOperation(ctx, op, metrics.StatusSuccess, e.since(start))
	return entries, true
}

// RestoreStates loads each of versions in order, skipping versions that no
// longer exist. It returns the versions that were loaded.
func (e *Engine) RestoreStates(ctx context.Context, versions []string) []string {
	if len(versions) == 0 {
		e.logger.Info("no states selected for restoring")
		return nil
	}

	var restored []string
	for _, v := range versions {
		exists, err := e.store.StateExists(ctx, v)
		if err != nil {
			e.logger.Error("cannot check state", zap.String("version", v), zap.Error(err))
			continue
		}
		if !exists {
			e.logger.Info("state no longer exists, skipping", zap.String("version", v))
			continue
		}
		if _, ok := e.LoadState(ctx, v); ok {
			restored = append(restored, v)
		}
	}
	return restored
}

// SavedStates lists stored versions with their capture times in insertion
// order.
func (e *Engine) SavedStates(ctx context.Context) ([]types.SavedState, error) {
	states, err := e.store.SavedStatesWithDates(ctx)
	if err != nil {
		return nil, err
	}
	e.metrics.SetSnapshotCount(ctx, int64(len(states)))
	return states, nil
}

func (e *Engine) refreshSnapshotCount(ctx context.Context) {
	states, err := e.store.SavedStatesWithDates(ctx)
	if err != nil {
		e.logger.Debug("cannot count snapshots", zap.Error(err))
		return
	}
	e.metrics.SetSnapshotCount(ctx, int64(len(states)))
}
