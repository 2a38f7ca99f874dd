// Package scene reads and writes compositing graphs stored as YAML documents
// and exposes them as a reference provider.
//
// A graph file looks like:
//
//	nodes:
//	  - name: Read1
//	    class: Read
//	    file: /shots/010/plate.exr
//	  - name: Group1
//	    class: Group
//	    nodes:
//	      - name: Read2
//	        class: Read
//	        file: /shots/010/bg.exr
//
// Node IDs are full names joined with dots ("Group1.Read2").
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// Node is one element of the graph. Groups carry child nodes.
type Node struct {
	Name  string  `yaml:"name"`
	Class string  `yaml:"class"`
	File  *string `yaml:"file,omitempty"`
	Nodes []*Node `yaml:"nodes,omitempty"`
}

// document is the on-disk layout.
type document struct {
	Nodes []*Node `yaml:"nodes"`
}

// Graph is an in-memory compositing graph. It implements types.Provider.
type Graph struct {
	nodes []*Node
	index map[string]*Node
	order []string
	depth map[string]int
	dirty bool
}

var _ types.Provider = (*Graph)(nil)

// Parse decodes a graph document. Duplicate full names and empty node names
// are rejected.
func Parse(data []byte) (*Graph, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to an empty graph.
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return newGraph(doc.Nodes)
}

// Load reads and parses the graph file at path.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// New builds a graph from nodes. It is used by tests and by callers that
// assemble a graph programmatically.
func New(nodes ...*Node) (*Graph, error) {
	return newGraph(nodes)
}

func newGraph(nodes []*Node) (*Graph, error) {
	g := &Graph{
		nodes: nodes,
		index: make(map[string]*Node),
		depth: make(map[string]int),
	}
	if err := g.walk(nodes, "", 0); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) walk(nodes []*Node, prefix string, depth int) error {
	for _, n := range nodes {
		if n == nil || strings.TrimSpace(n.Name) == "" {
			return errors.New("node without a name")
		}
		if strings.Contains(n.Name, ".") {
			return fmt.Errorf("node name %q contains '.'", n.Name)
		}
		id := n.Name
		if prefix != "" {
			id = prefix + "." + n.Name
		}
		if _, dup := g.index[id]; dup {
			return fmt.Errorf("duplicate node %q", id)
		}
		g.index[id] = n
		g.depth[id] = depth
		g.order = append(g.order, id)
		if err := g.walk(n.Nodes, id, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the graph back to YAML.
func (g *Graph) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&document{Nodes: g.nodes}); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the graph to path atomically and clears the dirty flag.
func (g *Graph) Save(path string) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".graph-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(fileMode(path)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	g.dirty = false
	return nil
}

// fileMode returns the permission bits of the file at path, or 0644 when it
// does not exist yet.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// Dirty reports whether any path changed since the graph was loaded or
// last saved.
func (g *Graph) Dirty() bool {
	return g.dirty
}

// References returns nodes with a non-empty file attribute in document
// order. Without recurse only top-level nodes are considered.
func (g *Graph) References(recurse bool) ([]types.Reference, error) {
	var refs []types.Reference
	for _, id := range g.order {
		if !recurse && g.depth[id] > 0 {
			continue
		}
		n := g.index[id]
		if n.File == nil || *n.File == "" {
			continue
		}
		refs = append(refs, types.Reference{
			ID:   id,
			Name: n.Name,
			Kind: types.KindFromClass(n.Class),
			Path: *n.File,
		})
	}
	return refs, nil
}

// Path returns the file attribute of the node id. Nodes without a file
// attribute are reported as not found.
func (g *Graph) Path(id string) (string, error) {
	n, ok := g.index[id]
	if !ok || n.File == nil {
		return "", fmt.Errorf("%w: %s", types.ErrReferenceNotFound, id)
	}
	return *n.File, nil
}

// SetPath overwrites the file attribute of the node id.
func (g *Graph) SetPath(id, path string) error {
	n, ok := g.index[id]
	if !ok || n.File == nil {
		return fmt.Errorf("%w: %s", types.ErrReferenceNotFound, id)
	}
	if *n.File != path {
		v := path
		n.File = &v
		g.dirty = true
	}
	return nil
}
