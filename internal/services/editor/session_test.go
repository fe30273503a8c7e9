package editor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"lumina/internal/services/notes"
	"lumina/internal/utils/debounce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var start = time.UnixMilli(1_700_000_000_000)

// memStore is an in-memory notes.Store.
type memStore struct {
	mu    sync.Mutex
	notes []notes.Note
}

func (m *memStore) Load(context.Context) ([]notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notes.Note(nil), m.notes...), nil
}

func (m *memStore) Save(_ context.Context, list []notes.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append([]notes.Note(nil), list...)
	return nil
}

// countingStore records every Update reaching the note service.
type countingStore struct {
	*notes.Service
	mu      sync.Mutex
	updates []notes.Note
}

func (c *countingStore) Update(ctx context.Context, n notes.Note) (notes.Note, error) {
	c.mu.Lock()
	c.updates = append(c.updates, n)
	c.mu.Unlock()
	return c.Service.Update(ctx, n)
}

func (c *countingStore) commits() []notes.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notes.Note(nil), c.updates...)
}

type fixture struct {
	clock *debounce.FakeClock
	store *memStore
	svc   *notes.Service
	cs    *countingStore
	mgr   *Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := debounce.NewFakeClock(start)
	store := &memStore{}
	svc := notes.NewService(store, nil, silentLogger, notes.WithClock(clock.Now))
	cs := &countingStore{Service: svc}
	opts = append([]Option{WithClock(clock)}, opts...)
	return &fixture{
		clock: clock,
		store: store,
		svc:   svc,
		cs:    cs,
		mgr:   NewManager(cs, silentLogger, opts...),
	}
}

func (f *fixture) open(t *testing.T) (*Session, notes.Note) {
	t.Helper()
	n := f.svc.Create(context.Background())
	s, err := f.mgr.Open(n.ID)
	require.NoError(t, err)
	return s, n
}

func TestSession_DebounceCommitsOnlyLatest(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	require.NoError(t, s.SetContent("A"))
	assert.Equal(t, StateDirty, s.State())
	assert.Equal(t, StatusSaving, s.Status())

	f.clock.Advance(500 * time.Millisecond)
	require.NoError(t, s.SetContent("AB"))

	f.clock.Advance(799 * time.Millisecond)
	assert.Empty(t, f.cs.commits(), "no commit may happen before 1300ms")

	f.clock.Advance(time.Millisecond)
	commits := f.cs.commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "AB", commits[0].Content)
	assert.Equal(t, start.Add(1300*time.Millisecond).UnixMilli(), commits[0].UpdatedAt)
	assert.Equal(t, n.ID, commits[0].ID)

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, StatusSaved, s.Status())
}

func TestSession_CommitPersistsThroughStore(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	require.NoError(t, s.SetTitle("Test"))
	f.clock.Advance(900 * time.Millisecond)

	reloaded := notes.NewService(f.store, nil, silentLogger)
	reloaded.Open(context.Background())
	got, err := reloaded.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", got.Title)
}

func TestSession_RevertCancelsPendingCommit(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)

	require.NoError(t, s.SetTitle("draft"))
	require.NoError(t, s.SetTitle(""))
	assert.Equal(t, StateIdle, s.State())

	f.clock.Advance(time.Second)
	assert.Empty(t, f.cs.commits())
}

func TestSession_TagEditing(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)

	require.NoError(t, s.AddTag(" Work "))
	require.NoError(t, s.AddTag("work"))
	require.NoError(t, s.AddTag(""))
	require.NoError(t, s.AddTag("ideas"))
	assert.Equal(t, []string{"work", "ideas"}, s.Buffer().Tags)

	require.NoError(t, s.RemoveTag("work"))
	assert.Equal(t, []string{"ideas"}, s.Buffer().Tags)

	require.NoError(t, s.SetTags([]string{"B", "a", "b"}))
	assert.Equal(t, []string{"b", "a"}, s.Buffer().Tags)
}

func TestSession_CommitKeepsFlagsToggledMeanwhile(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	require.NoError(t, s.SetColor("#E11D48"))
	_, err := f.svc.TogglePin(context.Background(), n.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Second)

	got, err := f.svc.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "#E11D48", got.Color)
	assert.True(t, got.IsPinned)
}

func TestSession_SnapshotMovesAfterCommit(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)

	require.NoError(t, s.SetContent("one"))
	f.clock.Advance(time.Second)
	require.Len(t, f.cs.commits(), 1)

	// back to the committed value: nothing new to write
	require.NoError(t, s.SetContent("two"))
	require.NoError(t, s.SetContent("one"))
	assert.Equal(t, StateIdle, s.State())
	f.clock.Advance(time.Second)
	assert.Len(t, f.cs.commits(), 1)
}

func TestSession_DeletedNoteDropsCommit(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	require.NoError(t, s.SetContent("lost"))
	require.NoError(t, f.svc.Delete(context.Background(), n.ID))

	assert.NotPanics(t, func() { f.clock.Advance(time.Second) })
	assert.Empty(t, f.cs.commits())
	assert.Equal(t, StateIdle, s.State())
	assert.Zero(t, f.clock.Pending(), "failed commit must not retry")
}

func TestSession_CloseDropsPendingByDefault(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t)

	require.NoError(t, s.SetContent("unsaved"))
	require.NoError(t, f.mgr.Close())
	f.clock.Advance(time.Second)

	assert.Empty(t, f.cs.commits())
	assert.ErrorIs(t, s.SetContent("late"), ErrSessionClosed)
	assert.True(t, s.Closed())
}

func TestSession_CloseFlushesWhenConfigured(t *testing.T) {
	f := newFixture(t, WithFlushOnClose(true))
	s, _ := f.open(t)

	require.NoError(t, s.SetContent("kept"))
	require.NoError(t, f.mgr.Close())

	commits := f.cs.commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "kept", commits[0].Content)
}

func TestSession_EditWhileSavingSchedulesAnotherCommit(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	var once sync.Once
	hook := &hookStore{countingStore: f.cs, beforeUpdate: func() {
		once.Do(func() { require.NoError(t, s.SetContent("second")) })
	}}
	mgr := NewManager(hook, silentLogger, WithClock(f.clock))
	s, err := mgr.Open(n.ID)
	require.NoError(t, err)

	require.NoError(t, s.SetContent("first"))
	f.clock.Advance(800 * time.Millisecond)
	assert.Equal(t, StateDirty, s.State())

	f.clock.Advance(800 * time.Millisecond)
	commits := f.cs.commits()
	require.Len(t, commits, 2)
	assert.Equal(t, "first", commits[0].Content)
	assert.Equal(t, "second", commits[1].Content)
	assert.Equal(t, StateIdle, s.State())
}

type hookStore struct {
	*countingStore
	beforeUpdate func()
}

func (h *hookStore) Update(ctx context.Context, n notes.Note) (notes.Note, error) {
	h.beforeUpdate()
	return h.countingStore.Update(ctx, n)
}

func TestSession_SnapshotView(t *testing.T) {
	f := newFixture(t)
	s, n := f.open(t)

	require.NoError(t, s.AppendContent("hello"))
	snap := s.Snapshot()
	assert.Equal(t, n.ID, snap.NoteID)
	assert.Equal(t, "hello", snap.Buffer.Content)
	assert.Equal(t, notes.DefaultColor, snap.Buffer.Color)
	assert.Equal(t, StateDirty, snap.State)
	assert.Equal(t, StatusSaving, snap.Status)
}
