package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/relink/pkg/types"
)

const sampleGraph = `nodes:
  - name: Read1
    class: Read
    file: /old/plates/a.exr
  - name: Blur1
    class: Blur
  - name: Group1
    class: Group
    nodes:
      - name: Read2
        class: Read
        file: /old/plates/b.exr
      - name: Write1
        class: Write
        file: /renders/out.exr
  - name: Read3
    class: Read
    file: ""
`

func TestParse_References(t *testing.T) {
	g, err := Parse([]byte(sampleGraph))
	require.NoError(t, err)

	refs, err := g.References(true)
	require.NoError(t, err)
	assert.Equal(t, []types.Reference{
		{ID: "Read1", Name: "Read1", Kind: types.KindRead, Path: "/old/plates/a.exr"},
		{ID: "Group1.Read2", Name: "Read2", Kind: types.KindRead, Path: "/old/plates/b.exr"},
		{ID: "Group1.Write1", Name: "Write1", Kind: types.KindWrite, Path: "/renders/out.exr"},
	}, refs)

	top, err := g.References(false)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Read1", top[0].ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate", "nodes:\n  - {name: A, class: Read}\n  - {name: A, class: Read}\n"},
		{"unnamed", "nodes:\n  - {class: Read}\n"},
		{"dotted name", "nodes:\n  - {name: A.B, class: Read}\n"},
		{"unknown field", "nodes:\n  - {name: A, klass: Read}\n"},
		{"not yaml", "nodes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	g, err := Parse(nil)
	require.NoError(t, err)
	refs, err := g.References(true)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestPathAndSetPath(t *testing.T) {
	g, err := Parse([]byte(sampleGraph))
	require.NoError(t, err)
	assert.False(t, g.Dirty())

	require.NoError(t, g.SetPath("Group1.Read2", "/new/plates/b.exr"))
	got, err := g.Path("Group1.Read2")
	require.NoError(t, err)
	assert.Equal(t, "/new/plates/b.exr", got)
	assert.True(t, g.Dirty())

	// Read3 has an empty file attribute; it is addressable but not listed.
	got, err = g.Path("Read3")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = g.Path("Blur1")
	assert.True(t, errors.Is(err, types.ErrReferenceNotFound))
	err = g.SetPath("Missing", "/x")
	assert.True(t, errors.Is(err, types.ErrReferenceNotFound))
}

func TestSetPath_SameValueNotDirty(t *testing.T) {
	g, err := Parse([]byte(sampleGraph))
	require.NoError(t, err)
	require.NoError(t, g.SetPath("Read1", "/old/plates/a.exr"))
	assert.False(t, g.Dirty())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGraph), 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, g.SetPath("Read1", "/new/plates/a.exr"))
	require.NoError(t, g.Save(path))
	assert.False(t, g.Dirty())

	reloaded, err := Load(path)
	require.NoError(t, err)
	got, err := reloaded.Path("Read1")
	require.NoError(t, err)
	assert.Equal(t, "/new/plates/a.exr", got)

	refs, err := reloaded.References(true)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
}

func TestSave_PreservesFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGraph), 0o644))
	require.NoError(t, os.Chmod(path, 0o640))

	g, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, g.SetPath("Read1", "/new/plates/a.exr"))
	require.NoError(t, g.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	fresh := filepath.Join(dir, "fresh.yaml")
	require.NoError(t, g.Save(fresh))
	info, err = os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	file := "/a.exr"
	g, err := New(&Node{Name: "Read1", Class: "Read", File: &file})
	require.NoError(t, err)
	p, err := g.Path("Read1")
	require.NoError(t, err)
	assert.Equal(t, "/a.exr", p)
}
