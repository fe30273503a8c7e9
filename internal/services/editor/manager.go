package editor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lumina/internal/utils/debounce"
)

// DefaultDebounce is the quiet period before an edit is committed.
const DefaultDebounce = 800 * time.Millisecond

// Manager owns the single open editor session.
type Manager struct {
	mu     sync.Mutex
	active *Session
	opened uint64

	store        NoteStore
	deb          *debounce.Debouncer
	clock        debounce.Clock
	flushOnClose bool
	log          *slog.Logger
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	clock        debounce.Clock
	delay        time.Duration
	flushOnClose bool
}

// WithClock sets the clock used for debounce timers and updatedAt stamps.
func WithClock(c debounce.Clock) Option {
	return func(o *managerOptions) { o.clock = c }
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) Option {
	return func(o *managerOptions) { o.delay = d }
}

// WithFlushOnClose makes Close commit pending edits instead of dropping them.
func WithFlushOnClose(flush bool) Option {
	return func(o *managerOptions) { o.flushOnClose = flush }
}

// NewManager creates an editor manager backed by store.
func NewManager(store NoteStore, log *slog.Logger, opts ...Option) *Manager {
	o := managerOptions{clock: debounce.RealClock{}, delay: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		store:        store,
		deb:          debounce.New(o.delay, o.clock),
		clock:        o.clock,
		flushOnClose: o.flushOnClose,
		log:          log,
	}
}

// Open starts editing id, selecting it and replacing any other session.
// Opening the note that is already open returns the existing session.
func (m *Manager) Open(id string) (*Session, error) {
	n, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := m.store.Select(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if m.active.NoteID() == id && !m.active.Closed() {
			return m.active, nil
		}
		m.active.close(m.flushOnClose)
	}
	m.opened++
	// keyed per session so a reopened note never shares a timer with its predecessor
	key := fmt.Sprintf("%s#%d", id, m.opened)
	m.active = newSession(key, n, m.store, m.deb, m.clock, m.log)
	m.log.Debug("editor opened", "note_id", id)
	return m.active, nil
}

// Active returns the open session.
func (m *Manager) Active() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, ErrNoSession
	}
	return m.active, nil
}

// Close ends the open session.
func (m *Manager) Close() error {
	m.mu.Lock()
	s := m.active
	m.active = nil
	m.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	s.close(m.flushOnClose)
	m.log.Debug("editor closed", "note_id", s.NoteID())
	return nil
}

// CloseIf ends the open session when it edits id. It is used when a note
// is deleted out from under the editor; pending edits are dropped.
func (m *Manager) CloseIf(id string) {
	m.mu.Lock()
	s := m.active
	if s == nil || s.NoteID() != id {
		m.mu.Unlock()
		return
	}
	m.active = nil
	m.mu.Unlock()

	s.close(false)
}

// Shutdown closes the open session and stops all timers.
func (m *Manager) Shutdown() {
	_ = m.Close()
	m.deb.Stop()
}
