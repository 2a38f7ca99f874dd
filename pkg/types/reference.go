// Reference types for host-graph elements that carry a file path.
package types

import "strings"

// Kind classifies a reference by the role of its node in the graph.
type Kind string

// Reference kinds.
const (
	KindRead  Kind = "read"
	KindWrite Kind = "write"
	KindOther Kind = "other"
)

// KindFromClass maps a node class name to a Kind. Matching is case-insensitive;
// anything other than Read or Write is KindOther.
func KindFromClass(class string) Kind {
	switch strings.ToLower(class) {
	case "read":
		return KindRead
	case "write":
		return KindWrite
	default:
		return KindOther
	}
}

// Reference is a point-in-time view of one path-carrying graph element.
type Reference struct {
	// ID is the stable full name of the element (e.g. "Group1.Read2").
	ID string `json:"id" yaml:"id"`

	// Name is the short element name, without its group prefix.
	Name string `json:"name" yaml:"name"`

	// Kind is the element role.
	Kind Kind `json:"kind" yaml:"kind"`

	// Path is the current value of the element's file attribute.
	Path string `json:"path" yaml:"path"`
}

// Provider is the host graph as seen by the core. Implementations enumerate
// path-carrying elements and read or write one element's path by ID.
type Provider interface {
	// References returns every element with a non-empty path attribute.
	// When recurse is true, elements inside sub-graphs are included.
	References(recurse bool) ([]Reference, error)

	// Path returns the current path of the element with the given ID.
	// Returns ErrReferenceNotFound if no such element exists.
	Path(id string) (string, error)

	// SetPath overwrites the path of the element with the given ID.
	// Returns ErrReferenceNotFound if no such element exists.
	SetPath(id, path string) error
}

// PathRef is the single capability the core uses to read and rewrite a path,
// regardless of whether the element is live in the graph or a plain record.
type PathRef interface {
	ID() string
	Kind() Kind
	Path() (string, error)
	SetPath(path string) error
}

// LiveReference is a PathRef backed by a Provider. Reads and writes go
// straight to the host graph.
type LiveReference struct {
	provider Provider
	id       string
	kind     Kind
}

var _ PathRef = (*LiveReference)(nil)

// NewLiveReference binds a reference ID to a provider.
func NewLiveReference(p Provider, id string, kind Kind) *LiveReference {
	return &LiveReference{provider: p, id: id, kind: kind}
}

func (r *LiveReference) ID() string { return r.id }

func (r *LiveReference) Kind() Kind { return r.kind }

func (r *LiveReference) Path() (string, error) { return r.provider.Path(r.id) }

func (r *LiveReference) SetPath(path string) error { return r.provider.SetPath(r.id, path) }

// SnapshotReference is a PathRef over a detached Reference record, used for
// rows restored from a snapshot or selected in a table before they are bound
// to a live element. SetPath only mutates the record.
type SnapshotReference struct {
	Ref Reference
}

var _ PathRef = (*SnapshotReference)(nil)

func (r *SnapshotReference) ID() string { return r.Ref.ID }

func (r *SnapshotReference) Kind() Kind { return r.Ref.Kind }

func (r *SnapshotReference) Path() (string, error) { return r.Ref.Path, nil }

func (r *SnapshotReference) SetPath(path string) error {
	r.Ref.Path = path
	return nil
}

// Resolve turns enumerated references into live PathRefs bound to p.
func Resolve(p Provider, refs []Reference) []PathRef {
	out := make([]PathRef, 0, len(refs))
	for _, r := range refs {
		out = append(out, NewLiveReference(p, r.ID, r.Kind))
	}
	return out
}
