package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"lumina/internal/services/notes"
	"lumina/internal/utils/debounce"
)

// NoteStore is the slice of the note service an editor needs.
type NoteStore interface {
	Get(id string) (notes.Note, error)
	Update(ctx context.Context, n notes.Note) (notes.Note, error)
	Select(id string) error
}

// State is the autosave state of a session.
type State string

const (
	StateIdle   State = "idle"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
)

// Status is the coarse indicator shown next to the editor.
type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
)

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	NoteID string `json:"noteId" example:"0b5c3cf4-3a44-4a6e-9db4-1f5a4c0f8a21"`
	Buffer Buffer `json:"buffer"`
	State  State  `json:"state" example:"idle"`
	Status Status `json:"status" example:"saved"`
}

// Session edits one note. Changes land in the buffer immediately and are
// committed to the store once the buffer has been quiet for the debounce
// period.
type Session struct {
	mu       sync.Mutex
	noteID   string
	key      string
	buf      Buffer
	snapshot Buffer
	state    State
	closed   bool

	store NoteStore
	deb   *debounce.Debouncer
	clock debounce.Clock
	log   *slog.Logger
}

func newSession(key string, n notes.Note, store NoteStore, deb *debounce.Debouncer, clock debounce.Clock, log *slog.Logger) *Session {
	b := BufferFrom(n)
	return &Session{
		noteID:   n.ID,
		key:      key,
		buf:      b,
		snapshot: b.clone(),
		state:    StateIdle,
		store:    store,
		deb:      deb,
		clock:    clock,
		log:      log.With("note_id", n.ID),
	}
}

// NoteID returns the id of the note being edited.
func (s *Session) NoteID() string { return s.noteID }

// Buffer returns a copy of the current buffer.
func (s *Session) Buffer() Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.clone()
}

// State returns the autosave state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status is saving while a commit is pending or in flight.
func (s *Session) Status() Status {
	if s.State() == StateIdle {
		return StatusSaved
	}
	return StatusSaving
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Snapshot returns the buffer and state together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := StatusSaving
	if s.state == StateIdle {
		st = StatusSaved
	}
	return Snapshot{NoteID: s.noteID, Buffer: s.buf.clone(), State: s.state, Status: st}
}

// Apply runs fn against the buffer and reschedules the autosave.
func (s *Session) Apply(fn func(*Buffer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	fn(&s.buf)
	if s.buf.Tags == nil {
		s.buf.Tags = []string{}
	}
	s.reconcileLocked()
	return nil
}

func (s *Session) SetTitle(title string) error {
	return s.Apply(func(b *Buffer) { b.Title = title })
}

func (s *Session) SetContent(content string) error {
	return s.Apply(func(b *Buffer) { b.Content = content })
}

func (s *Session) SetColor(color string) error {
	return s.Apply(func(b *Buffer) { b.Color = color })
}

// SetTags replaces the tag list with its normalized, deduplicated form.
func (s *Session) SetTags(tags []string) error {
	return s.Apply(func(b *Buffer) { b.Tags = notes.MergeTags(nil, tags) })
}

// AddTag appends tag unless it is empty or already present.
func (s *Session) AddTag(tag string) error {
	return s.Apply(func(b *Buffer) { b.Tags = notes.MergeTags(b.Tags, []string{tag}) })
}

func (s *Session) RemoveTag(tag string) error {
	return s.Apply(func(b *Buffer) { b.Tags = notes.RemoveTag(b.Tags, tag) })
}

// AppendContent adds text to the end of the content.
func (s *Session) AppendContent(text string) error {
	return s.Apply(func(b *Buffer) { b.Content += text })
}

// reconcileLocked compares the buffer with the last committed snapshot.
// A difference (re)arms the debounce task; a match cancels it.
func (s *Session) reconcileLocked() {
	if s.buf.Equal(s.snapshot) {
		s.deb.Cancel(s.key)
		if s.state == StateDirty {
			s.state = StateIdle
		}
		return
	}
	if s.state != StateSaving {
		s.state = StateDirty
	}
	s.deb.Schedule(s.key, s.commit)
}

// commit writes the buffer over the current stored note.
func (s *Session) commit() {
	s.mu.Lock()
	s.state = StateSaving
	buf := s.buf.clone()
	s.mu.Unlock()

	committed, err := s.write(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.snapshot = BufferFrom(committed)
	} else {
		// nothing to retry against; the attempted buffer becomes the baseline
		s.snapshot = buf
	}
	if s.closed || s.buf.Equal(s.snapshot) {
		s.deb.Cancel(s.key)
		s.state = StateIdle
		return
	}
	// edited while saving
	s.state = StateDirty
	if !s.deb.Pending(s.key) {
		s.deb.Schedule(s.key, s.commit)
	}
}

func (s *Session) write(buf Buffer) (notes.Note, error) {
	current, err := s.store.Get(s.noteID)
	if err != nil {
		if errors.Is(err, notes.ErrNoteNotFound) {
			s.log.Warn("note deleted before commit, dropping changes")
		} else {
			s.log.Error(ErrCommitNote.Error(), "error", err)
		}
		return notes.Note{}, err
	}

	next := buf.ApplyTo(current)
	next.UpdatedAt = s.clock.Now().UnixMilli()

	committed, err := s.store.Update(context.Background(), next)
	if err != nil {
		s.log.Error(ErrCommitNote.Error(), "error", err)
		return notes.Note{}, err
	}
	s.log.Debug("note committed", "updated_at", committed.UpdatedAt)
	return committed, nil
}

// close marks the session closed. With flush a pending commit runs first;
// without it the pending commit is discarded.
func (s *Session) close(flush bool) {
	if flush {
		s.deb.Flush(s.key)
	} else {
		s.deb.Cancel(s.key)
	}

	s.mu.Lock()
	s.closed = true
	if s.state == StateDirty {
		s.state = StateIdle
	}
	s.mu.Unlock()
}
