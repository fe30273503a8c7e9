package editor

import (
	"context"
	"testing"
	"time"

	"lumina/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenSelectsNote(t *testing.T) {
	f := newFixture(t)
	first := f.svc.Create(context.Background())
	f.svc.Create(context.Background())

	s, err := f.mgr.Open(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, s.NoteID())

	sel, ok := f.svc.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, sel.ID)

	active, err := f.mgr.Active()
	require.NoError(t, err)
	assert.Same(t, s, active)
}

func TestManager_OpenUnknownNote(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Open("missing")
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	_, err = f.mgr.Active()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_OpenSameNoteReusesSession(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)
	require.NoError(t, s.SetContent("draft"))

	again, err := f.mgr.Open(n.ID)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, "draft", again.Buffer().Content)
}

func TestManager_OpenOtherReplacesSession(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)
	require.NoError(t, s.SetContent("dropped"))

	other := f.svc.Create(context.Background())
	next, err := f.mgr.Open(other.ID)
	require.NoError(t, err)

	assert.True(t, s.Closed())
	assert.False(t, next.Closed())
	f.clock.Advance(time.Second)
	assert.Empty(t, f.cs.commits())
}

func TestManager_ReopenAfterCloseGetsFreshTimer(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)
	require.NoError(t, s.SetContent("old"))
	require.NoError(t, f.mgr.Close())

	next, err := f.mgr.Open(n.ID)
	require.NoError(t, err)
	assert.NotSame(t, s, next)
	assert.Empty(t, next.Buffer().Content)

	require.NoError(t, next.SetContent("new"))
	f.clock.Advance(time.Second)
	commits := f.cs.commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "new", commits[0].Content)
}

func TestManager_CloseIf(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	f.mgr.CloseIf("someone-else")
	assert.False(t, s.Closed())

	f.mgr.CloseIf(n.ID)
	assert.True(t, s.Closed())
	assert.ErrorIs(t, f.mgr.Close(), ErrNoSession)
}

func TestManager_Shutdown(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)
	require.NoError(t, s.SetContent("pending"))

	f.mgr.Shutdown()
	f.clock.Advance(time.Second)

	assert.Empty(t, f.cs.commits())
	assert.Zero(t, f.clock.Pending())
}
