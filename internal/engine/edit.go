package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/internal/matcher"
	"github.com/mesh-intelligence/relink/internal/metrics"
	"github.com/mesh-intelligence/relink/pkg/types"
)

// UpdateReferencePath overwrites the path of reference id. A missing
// reference is a no-op.
func (e *Engine) UpdateReferencePath(id, newPath string) error {
	err := e.provider.SetPath(id, newPath)
	if errors.Is(err, types.ErrReferenceNotFound) {
		e.logger.Debug("reference not found", zap.String("id", id))
		return nil
	}
	return err
}

// UpdateReferencePathPartial replaces every occurrence of match in the path
// of reference id with replacement. Nothing is written when match does not
// occur or the reference is missing.
func (e *Engine) UpdateReferencePathPartial(id, match, replacement string) error {
	current, err := e.provider.Path(id)
	if errors.Is(err, types.ErrReferenceNotFound) {
		e.logger.Debug("reference not found", zap.String("id", id))
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.Contains(current, match) {
		return nil
	}
	return e.provider.SetPath(id, strings.ReplaceAll(current, match, replacement))
}

// RegexOutcome is the result of ApplyRegexToReference.
type RegexOutcome struct {
	// Path is the computed path. Empty when Err is set or Found is false.
	Path string

	// Err is set when the expression does not compile.
	Err error

	// Found is false when the reference does not exist.
	Found bool
}

// ApplyRegexToReference computes the path of reference id with expr
// replaced by replacement. The reference is not modified.
func (e *Engine) ApplyRegexToReference(id, expr, replacement string) RegexOutcome {
	current, err := e.provider.Path(id)
	if err != nil {
		if !errors.Is(err, types.ErrReferenceNotFound) {
			e.logger.Warn("cannot read reference path", zap.String("id", id), zap.Error(err))
		}
		return RegexOutcome{}
	}
	next, err := matcher.RegexSubstitution(current, expr, replacement)
	if err != nil {
		return RegexOutcome{Err: err, Found: true}
	}
	return RegexOutcome{Path: next, Found: true}
}

// Reroot moves the selected references from matchRoot to newRoot, keeping
// the path below the root. References outside matchRoot are left alone.
// It returns the number of references rewritten.
func (e *Engine) Reroot(ids []string, matchRoot, newRoot string) int {
	n := 0
	for _, id := range ids {
		current, err := e.provider.Path(id)
		if err != nil {
			e.logger.Warn("skipping reference", zap.String("id", id), zap.Error(err))
			continue
		}
		next := matcher.Reroot(current, matchRoot, newRoot)
		if next == current {
			continue
		}
		if err := e.provider.SetPath(id, next); err != nil {
			e.logger.Warn("skipping reference", zap.String("id", id), zap.Error(err))
			continue
		}
		n++
	}
	return n
}

// ReplaceResult describes the outcome of ReplaceSelected.
type ReplaceResult struct {
	Replaced []string
	Skipped  []string
}

// ReplaceSelected rewrites the selected references with directory
// substitution, but only where the parent directory of the new path exists.
// Cancelling ctx stops further writes and returns ctx.Err().
func (e *Engine) ReplaceSelected(ctx context.Context, ids []string) (ReplaceResult, error) {
	const op = "replace"
	start := e.now()
	var res ReplaceResult

	if len(ids) == 0 {
		e.logger.Info("no references selected for replacement")
		e.metrics.RecordOperation(ctx, op, metrics.StatusNoop, e.since(start))
		return res, nil
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Skipped = append(res.Skipped, ids[i:]...)
			e.fail(ctx, op, start, err)
			return res, err
		}
		if err := e.replaceOne(id); err != nil {
			e.logger.Info("skipping replacement", zap.String("id", id), zap.Error(err))
			res.Skipped = append(res.Skipped, id)
			continue
		}
		e.logger.Info("path replaced", zap.String("id", id))
		res.Replaced = append(res.Replaced, id)
	}
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeRewritten, len(res.Replaced))
	e.metrics.RecordReferences(ctx, op, metrics.OutcomeSkipped, len(res.Skipped))
	e.metrics.RecordOperation(ctx, op, metrics.StatusSuccess, e.since(start))
	return res, nil
}

func (e *Engine) replaceOne(id string) error {
	current, err := e.provider.Path(id)
	if err != nil {
		return err
	}
	next, err := matcher.DirectorySubstitution(current, e.mapping)
	if err != nil {
		return err
	}
	if next == "" {
		return errors.New("no new path generated")
	}
	dir := filepath.Dir(next)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory %s does not exist", dir)
	}
	return e.provider.SetPath(id, next)
}

// References lists every reference in the graph, recursing into groups.
// When kinds is non-empty only references of those kinds are returned.
func (e *Engine) References(kinds ...types.Kind) ([]types.Reference, error) {
	refs, err := e.provider.References(true)
	if err != nil {
		return nil, fmt.Errorf("enumerate references: %w", err)
	}
	if len(kinds) == 0 {
		return refs, nil
	}
	var out []types.Reference
	for _, r := range refs {
		if slices.Contains(kinds, r.Kind) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ReadWriteReferences lists the Read and Write references of the graph.
func (e *Engine) ReadWriteReferences() ([]types.Reference, error) {
	return e.References(types.KindRead, types.KindWrite)
}

// ReferenceIDs returns the IDs of references of the given kinds, or of all
// references when kinds is empty.
func (e *Engine) ReferenceIDs(kinds ...types.Kind) ([]string, error) {
	refs, err := e.References(kinds...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids, nil
}
