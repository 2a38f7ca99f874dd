package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/relink/internal/scene"
	"github.com/mesh-intelligence/relink/pkg/types"
)

func TestSaveLoadState_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oldNew())
	require.NoError(t, f.graph.SetPath("Read1", "/a/x.exr"))

	assert.True(t, f.engine.SaveState(ctx, "20240101", []string{"Read1"}))

	require.NoError(t, f.graph.SetPath("Read1", "/b/y.exr"))
	got, ok := f.engine.LoadState(ctx, "20240101")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"Read1": "/a/x.exr"}, got)
	assert.Equal(t, "/a/x.exr", f.path(t, "Read1"))

	missing, ok := f.engine.LoadState(ctx, "missing")
	assert.False(t, ok)
	assert.Nil(t, missing)

	require.NoError(t, f.graph.SetPath("Read1", "/c/z.exr"))
	assert.False(t, f.engine.SaveState(ctx, "20240101", []string{"Read1"}))
	assert.Equal(t, 1, f.logs.FilterMessage("version already exists").Len())

	got, ok = f.engine.LoadState(ctx, "20240101")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"Read1": "/a/x.exr"}, got, "original snapshot intact")
}

func TestLoadState_MissingVersionHasNoSideEffects(t *testing.T) {
	f := newFixture(t, oldNew())

	_, ok := f.engine.LoadState(context.Background(), "nope")
	assert.False(t, ok)
	assert.False(t, f.graph.Dirty())
}

func TestSaveState_SkipsUnresolvableIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oldNew())

	require.True(t, f.engine.SaveState(ctx, "v1", []string{"Read1", "Ghost", "Group1.Write1"}))

	entries, err := f.store.LoadState(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Read1":         "/old/plates/a.exr",
		"Group1.Write1": "/renders/out.exr",
	}, entries)
}

func TestLoadState_ReturnsSavedMappingEvenWhenReferencesAreGone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oldNew())
	require.True(t, f.engine.SaveState(ctx, "v1", []string{"Read1", "Group1.Read2"}))

	// A different graph that only has Read1.
	g, err := scene.Parse([]byte("nodes:\n  - {name: Read1, class: Read, file: /elsewhere/a.exr}\n"))
	require.NoError(t, err)
	e := New(g, f.store, oldNew())

	got, ok := e.LoadState(ctx, "v1")
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"Read1":        "/old/plates/a.exr",
		"Group1.Read2": "/old/plates/b.exr",
	}, got)

	p, err := g.Path("Read1")
	require.NoError(t, err)
	assert.Equal(t, "/old/plates/a.exr", p)
}

func TestSaveState_StoreFailure(t *testing.T) {
	g, err := scene.Parse([]byte(fixtureGraph))
	require.NoError(t, err)
	e := New(g, &failingStore{err: types.ErrPersistence}, oldNew())

	assert.False(t, e.SaveState(context.Background(), "v1", []string{"Read1"}))
	got, ok := e.LoadState(context.Background(), "v1")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRestoreStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oldNew())
	require.True(t, f.engine.SaveState(ctx, "v1", []string{"Read1"}))
	require.NoError(t, f.graph.SetPath("Read1", "/moved/a.exr"))
	require.True(t, f.engine.SaveState(ctx, "v2", []string{"Read1"}))

	restored := f.engine.RestoreStates(ctx, []string{"gone", "v2", "v1"})
	assert.Equal(t, []string{"v2", "v1"}, restored)
	assert.Equal(t, "/old/plates/a.exr", f.path(t, "Read1"), "last restored version wins")
	assert.Equal(t, 1, f.logs.FilterMessage("state no longer exists, skipping").Len())

	assert.Nil(t, f.engine.RestoreStates(ctx, nil))
}

func TestSavedStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oldNew())
	for _, v := range []string{"b", "a", "c"} {
		require.True(t, f.engine.SaveState(ctx, v, []string{"Read1"}))
	}

	states, err := f.engine.SavedStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "b", states[0].Version)
	assert.Equal(t, "a", states[1].Version)
	assert.Equal(t, "c", states[2].Version)
	assert.False(t, states[0].CapturedAt.IsZero())
}
