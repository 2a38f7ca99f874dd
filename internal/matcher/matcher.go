// Package matcher selects references by pattern and computes replacement
// paths. Everything here is pure: no function reads or writes the host graph
// beyond the PathRef reads in FindMatches.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// Compile compiles expr, wrapping any parse error in ErrInvalidPattern.
func Compile(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidPattern, err)
	}
	return re, nil
}

// FindMatches returns the refs whose current path contains a match for
// pattern. The match is a search, not a full match. References whose path
// cannot be read are left out. Zero matches is not an error.
func FindMatches(pattern string, refs []types.PathRef) ([]types.PathRef, error) {
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	var matched []types.PathRef
	for _, r := range refs {
		p, err := r.Path()
		if err != nil {
			continue
		}
		if re.MatchString(p) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// DirectorySubstitution rewrites path according to m.
//
// With both directories set, the first occurrence of OldDirectory is
// replaced with NewDirectory. The match is textual and not anchored to path
// segments. With only NewDirectory set, path is joined under NewDirectory as
// a relative path. Otherwise path is returned unchanged together with
// ErrConfigIncomplete (only OldDirectory set) or ErrConfigMissing.
func DirectorySubstitution(path string, m types.DirectoryMapping) (string, error) {
	switch {
	case m.HasOld() && m.HasNew():
		return strings.Replace(path, *m.OldDirectory, *m.NewDirectory, 1), nil
	case m.HasNew():
		return joinRemainder(*m.NewDirectory, path), nil
	case m.HasOld():
		return path, types.ErrConfigIncomplete
	default:
		return path, types.ErrConfigMissing
	}
}

// RegexSubstitution replaces every non-overlapping match of expr in path,
// left to right. Replacement may use $1-style group references.
func RegexSubstitution(path, expr, replacement string) (string, error) {
	re, err := Compile(expr)
	if err != nil {
		return path, err
	}
	return re.ReplaceAllString(path, replacement), nil
}

// Reroot moves path from under matchRoot to under newRoot, keeping the
// remainder byte for byte. matchRoot must end at a path segment boundary;
// a path outside matchRoot is returned unchanged.
func Reroot(path, matchRoot, newRoot string) string {
	if !strings.HasPrefix(path, matchRoot) {
		return path
	}
	rest := path[len(matchRoot):]
	atBoundary := rest == "" || isSeparator(rest[0]) ||
		(matchRoot != "" && isSeparator(matchRoot[len(matchRoot)-1]))
	if !atBoundary {
		return path
	}
	return joinRemainder(newRoot, rest)
}

// joinRemainder appends rest to root with exactly one separator between
// them. Unlike filepath.Join it does not clean rest: ".." segments, interior
// doubled separators and a trailing separator are kept.
func joinRemainder(root, rest string) string {
	rest = strings.TrimLeft(rest, `/\`)
	switch {
	case rest == "":
		return root
	case root == "":
		return rest
	}
	return strings.TrimRight(root, `/\`) + string(filepath.Separator) + rest
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}
