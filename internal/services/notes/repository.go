package notes

import "context"

// Store persists the whole note collection as one unit.
type Store interface {
	// Load returns the stored collection in stored order. A missing
	// collection is not an error.
	Load(ctx context.Context) ([]Note, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, notes []Note) error
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

type nopBus struct{}

func (nopBus) Broadcast(context.Context, NoteEvent) {}
