package notes

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service owns the authoritative, ordered note collection. Every successful
// mutation is written through to the Store before it is broadcast.
type Service struct {
	mu       sync.RWMutex
	notes    []Note
	selected string

	store Store
	bus   Bus
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how new note ids are produced.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a new notes service
func NewService(store Store, bus Bus, log *slog.Logger, opts ...Option) *Service {
	if bus == nil {
		bus = nopBus{}
	}
	s := &Service{
		store: store,
		bus:   bus,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
		notes: []Note{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the collection from the store. A failing or corrupt store
// yields an empty collection; the error is logged, never returned.
func (s *Service) Open(ctx context.Context) {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error(ErrLoadNotes.Error(), "error", err)
		loaded = nil
	}

	out := make([]Note, 0, len(loaded))
	for _, n := range loaded {
		out = append(out, n.Clone())
	}

	s.mu.Lock()
	s.notes = out
	s.selected = ""
	s.mu.Unlock()

	s.log.Info("notes loaded", "count", len(out))
}

// Create inserts a blank note at the front of the collection and selects it.
func (s *Service) Create(ctx context.Context) Note {
	n := Note{
		ID:        s.newID(),
		Tags:      []string{},
		Color:     DefaultColor,
		UpdatedAt: s.now().UnixMilli(),
	}

	s.mu.Lock()
	s.notes = slices.Insert(s.notes, 0, n)
	s.selected = n.ID
	s.persistLocked(ctx)
	s.mu.Unlock()

	out := n.Clone()
	s.bus.Broadcast(ctx, NoteEvent{Type: EventCreated, Note: &out})
	return n.Clone()
}

// Update replaces the stored note with the same id wholesale.
func (s *Service) Update(ctx context.Context, n Note) (Note, error) {
	n = n.Clone()

	s.mu.Lock()
	i := s.indexLocked(n.ID)
	if i < 0 {
		s.mu.Unlock()
		return Note{}, ErrNoteNotFound
	}
	s.notes[i] = n
	s.persistLocked(ctx)
	s.mu.Unlock()

	out := n.Clone()
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: &out})
	return n.Clone(), nil
}

// Delete removes the note and clears the selection when it pointed at it.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNoteNotFound
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	if s.selected == id {
		s.selected = ""
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Broadcast(ctx, NoteEvent{Type: EventDeleted, Note: &Note{ID: id}})
	return nil
}

// ToggleFavorite flips isFavorite. updatedAt is left untouched.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (Note, error) {
	return s.toggle(ctx, id, func(n *Note) { n.IsFavorite = !n.IsFavorite })
}

// TogglePin flips isPinned. updatedAt is left untouched.
func (s *Service) TogglePin(ctx context.Context, id string) (Note, error) {
	return s.toggle(ctx, id, func(n *Note) { n.IsPinned = !n.IsPinned })
}

func (s *Service) toggle(ctx context.Context, id string, flip func(*Note)) (Note, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Note{}, ErrNoteNotFound
	}
	flip(&s.notes[i])
	n := s.notes[i].Clone()
	s.persistLocked(ctx)
	s.mu.Unlock()

	out := n.Clone()
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: &out})
	return n, nil
}

// Get returns a copy of the note with the given id.
func (s *Service) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	return s.notes[i].Clone(), nil
}

// List returns a copy of the collection in collection order.
func (s *Service) List() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Select makes id the active note.
func (s *Service) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return ErrNoteNotFound
	}
	s.selected = id
	return nil
}

// Selected returns the active note, if any.
func (s *Service) Selected() (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return Note{}, false
	}
	i := s.indexLocked(s.selected)
	if i < 0 {
		return Note{}, false
	}
	return s.notes[i].Clone(), true
}

// ClearSelection drops the active note.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

func (s *Service) indexLocked(id string) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

func (s *Service) snapshotLocked() []Note {
	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// persistLocked writes the full collection. Saving under the lock keeps the
// stored order identical to the in-memory order. Failures are logged only.
func (s *Service) persistLocked(ctx context.Context) {
	if err := s.store.Save(context.WithoutCancel(ctx), s.snapshotLocked()); err != nil {
		s.log.Error(ErrPersistNotes.Error(), "error", err, "count", len(s.notes))
	}
}
