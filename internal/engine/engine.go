// Package engine implements relinking of file-path references in a
// compositing graph, single-reference path edits, and save/restore of
// named path snapshots.
//
// The engine reads and writes paths only through a types.Provider and keeps
// snapshots and the relink log in a Store. Failures on individual references
// are logged and skipped; a batch always completes for every reference that
// can be written.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/internal/matcher"
	"github.com/mesh-intelligence/relink/internal/metrics"
	"github.com/mesh-intelligence/relink/pkg/types"
)

// Store is the snapshot store as used by the engine.
type Store interface {
	LogRelinkOperation(ctx context.Context, pattern, replacement string, affected *int) (types.RelinkOperationRecord, error)
	SaveState(ctx context.Context, version string, entries map[string]string) error
	LoadState(ctx context.Context, version string) (map[string]string, error)
	StateExists(ctx context.Context, version string) (bool, error)
	SavedStatesWithDates(ctx context.Context) ([]types.SavedState, error)
	LastVersion(ctx context.Context) (string, error)
}

// MappingSaver persists the directory mapping after a relink.
type MappingSaver func(types.DirectoryMapping) error

// Engine orchestrates the matcher, the store and the provider. An Engine
// is not safe for concurrent use.
type Engine struct {
	provider types.Provider
	store    Store
	mapping  types.DirectoryMapping

	logger  *zap.Logger
	metrics metrics.Collector
	now     func() time.Time
	saver   MappingSaver

	promptIn  io.Reader
	promptOut io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. The default is a no-op collector.
func WithMetrics(c metrics.Collector) Option {
	return func(e *Engine) {
		if c != nil {
			e.metrics = c
		}
	}
}

// WithClock overrides the time source used for timestamp versions and
// operation durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPrompt sets where user_input version names are read from and where the
// prompt is written. Setting a reader bypasses the terminal check.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(e *Engine) {
		e.promptIn = in
		e.promptOut = out
	}
}

// WithMappingSaver sets the function that persists the directory mapping
// after each relink with matches. Without it the mapping lives in memory
// only.
func WithMappingSaver(s MappingSaver) Option {
	return func(e *Engine) {
		e.saver = s
	}
}

// New creates an engine over provider and store, starting from mapping.
func New(provider types.Provider, store Store, mapping types.DirectoryMapping, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		store:    store,
		mapping:  mapping,
		logger:   zap.NewNop(),
		metrics:  metrics.NewNoopCollector(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mapping returns the engine's current directory mapping.
func (e *Engine) Mapping() types.DirectoryMapping {
	return e.mapping
}

// RelinkResult describes the outcome of PerformRelink.
type RelinkResult struct {
	// Matched is the number of references whose path matched the pattern.
	Matched int

	// Affected is the number of references actually rewritten.
	Affected int

	// Skipped lists the IDs of matched references that could not be
	// rewritten.
	Skipped []string

	// Record is the appended log entry, nil when nothing matched or the
	// append failed.
	Record *types.RelinkOperationRecord

	// LogErr is set when appending the log entry failed. Path changes
	// already applied are kept.
	LogErr error
}

// PerformRelink rewrites every reference whose path matches pattern, using
// directory substitution against the engine mapping. When at least one
// reference matched, one operation record is appended and the
// pattern/newPath pair is saved into the mapping.
//
// An invalid pattern or a failed enumeration is returned as an error with no
// path touched. Cancelling ctx stops further writes; the record for the
// writes already applied is still appended and ctx.Err() is returned.
func (e *Engine) PerformRelink(ctx context.Context, pattern, newPath string) (RelinkResult, error) {
	const op = "relink"
	start := e.now()
	var res RelinkResult

	refs, err := e.provider.References(true)
	if err != nil {
		e.fail(ctx, op, start, err)
		return res, fmt.Errorf("enumerate references: %w", err)
	}

	matches, err := matcher.FindMatches(pattern, types.Resolve(e.provider, refs))
	if err != nil {
		e.fail(ctx, op, start, err)
		return res, err
	}
	if len(matches) == 0 {
		e.logger.Info("no references with matching paths found", zap.String("pattern", pattern))
		e.metrics.RecordOperation(ctx, op, metrics.StatusNoop, e.since(start))
		return res, nil
	}
	res.Matched = len(matches)

	var interrupted error
	for i, ref := range matches {
		if err := ctx.Err(); err != nil {
			interrupted = err
			for _, rest := range matches[i:] {
				res.Skipped = append(res.Skipped, rest.ID())
			}
			e.logger.Warn("relink interrupted", zap.Int("applied", res.Affected), zap.Int("remaining", len(matches)-i))
			break
		}
		if err := e.rewrite(ref); err != nil {
			e.logger.Warn("skipping reference", zap.String("id", ref.ID()), zap.Error(err))
			e.metrics.RecordError(ctx, op, errorType(err))
			res.Skipped = append(res.Skipped, ref.ID())
			continue
		}
		res.Affected++
	}
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeRewritten, res.Affected)
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeSkipped, len(res.Skipped))
	e.logger.Info("relinked references",
		zap.String("pattern", pattern),
		zap.Int("matched", res.Matched),
		zap.Int("affected", res.Affected))

	// The log append must survive cancellation of the batch.
	affected := res.Affected
	rec, err := e.store.LogRelinkOperation(context.WithoutCancel(ctx), pattern, newPath, &affected)
	if err != nil {
		e.logger.Error("failed to log relink operation", zap.String("pattern", pattern), zap.Error(err))
		e.metrics.RecordError(ctx, op, errorType(err))
		res.LogErr = err
	} else {
		res.Record = &rec
	}

	e.mapping = e.mapping.WithLastRelink(pattern, newPath)
	e.saveMapping()

	status := metrics.StatusSuccess
	if interrupted != nil || res.LogErr != nil {
		status = metrics.StatusFailure
	}
	e.metrics.RecordOperation(ctx, op, status, e.since(start))
	return res, interrupted
}

// rewrite applies directory substitution to one reference.
func (e *Engine) rewrite(ref types.PathRef) error {
	current, err := ref.Path()
	if err != nil {
		return err
	}
	next, err := matcher.DirectorySubstitution(current, e.mapping)
	if err != nil {
		return err
	}
	return ref.SetPath(next)
}

func (e *Engine) saveMapping() {
	if e.saver == nil {
		return
	}
	if err := e.saver(e.mapping); err != nil {
		e.logger.Warn("failed to save directory mapping", zap.Error(err))
	}
}

func (e *Engine) fail(ctx context.Context, op string, start time.Time, err error) {
	e.metrics.RecordError(ctx, op, errorType(err))
	e.metrics.RecordOperation(ctx, op, metrics.StatusFailure, e.since(start))
}

func (e *Engine) since(start time.Time) int64 {
	return e.now().Sub(start).Milliseconds()
}

// errorType maps an error to a metrics label.
func errorType(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidPattern):
		return "invalid_pattern"
	case errors.Is(err, types.ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, types.ErrConfigIncomplete):
		return "config_incomplete"
	case errors.Is(err, types.ErrReferenceNotFound):
		return "reference_not_found"
	case errors.Is(err, types.ErrVersionExists):
		return "version_exists"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrPersistence):
		return "persistence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	default:
		return "other"
	}
}
