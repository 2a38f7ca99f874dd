package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapProvider is a minimal Provider over a map of ID to path.
type mapProvider map[string]string

func (m mapProvider) References(bool) ([]Reference, error) {
	var out []Reference
	for id, p := range m {
		out = append(out, Reference{ID: id, Name: id, Kind: KindRead, Path: p})
	}
	return out, nil
}

func (m mapProvider) Path(id string) (string, error) {
	p, ok := m[id]
	if !ok {
		return "", ErrReferenceNotFound
	}
	return p, nil
}

func (m mapProvider) SetPath(id, path string) error {
	if _, ok := m[id]; !ok {
		return ErrReferenceNotFound
	}
	m[id] = path
	return nil
}

func TestKindFromClass(t *testing.T) {
	assert.Equal(t, KindRead, KindFromClass("Read"))
	assert.Equal(t, KindWrite, KindFromClass("WRITE"))
	assert.Equal(t, KindOther, KindFromClass("Grade"))
	assert.Equal(t, KindOther, KindFromClass(""))
}

func TestLiveReference(t *testing.T) {
	p := mapProvider{"Read1": "/a/x.exr"}
	ref := NewLiveReference(p, "Read1", KindRead)

	got, err := ref.Path()
	require.NoError(t, err)
	assert.Equal(t, "/a/x.exr", got)

	require.NoError(t, ref.SetPath("/b/x.exr"))
	assert.Equal(t, "/b/x.exr", p["Read1"])

	gone := NewLiveReference(p, "Missing", KindRead)
	_, err = gone.Path()
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestSnapshotReference(t *testing.T) {
	ref := &SnapshotReference{Ref: Reference{ID: "Read1", Kind: KindRead, Path: "/a"}}
	require.NoError(t, ref.SetPath("/b"))

	got, err := ref.Path()
	require.NoError(t, err)
	assert.Equal(t, "/b", got)
	assert.Equal(t, "Read1", ref.ID())
}

func TestResolve(t *testing.T) {
	p := mapProvider{"Read1": "/a", "Write1": "/b"}
	refs, err := p.References(true)
	require.NoError(t, err)

	live := Resolve(p, refs)
	require.Len(t, live, 2)
	for _, r := range live {
		_, ok := r.(*LiveReference)
		assert.True(t, ok)
	}
}

func TestDirectoryMapping(t *testing.T) {
	var m DirectoryMapping
	assert.False(t, m.HasOld())
	assert.False(t, m.HasNew())

	m = m.WithDirectories("/old", "")
	assert.True(t, m.HasOld())
	assert.False(t, m.HasNew())

	m = m.WithDirectories("", "/new").WithLastRelink("^/old", "/new")
	assert.Equal(t, "/old", StringValue(m.OldDirectory))
	assert.Equal(t, "/new", StringValue(m.NewDirectory))
	assert.Equal(t, "^/old", StringValue(m.LastPattern))

	empty := ""
	m.NewDirectory = &empty
	assert.False(t, m.HasNew())
	assert.Nil(t, StringPtr(""))
}
