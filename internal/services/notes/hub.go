package notes

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lumina/internal/logger"

	"github.com/oklog/ulid/v2"
)

// Subscriber represents a connection that can receive note events
type Subscriber struct {
	Ch   chan NoteEvent
	Done chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// Hub fans note events out to every open stream connection. Lumina is a
// single-user application, so all subscribers receive every event.
type Hub struct {
	mu         sync.RWMutex
	conns      map[ulid.ULID]ConnInfo
	bufferSize int
	dropped    uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		conns:      make(map[ulid.ULID]ConnInfo),
		bufferSize: bufferSize,
	}
}

// Subscribe adds a new subscriber to the hub
func (h *Hub) Subscribe(connULID ulid.ULID) (*Subscriber, func()) {
	if log := logger.L(); log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connULID.String())
	}

	sub := &Subscriber{
		Ch:   make(chan NoteEvent, h.bufferSize),
		Done: make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[connULID] = ConnInfo{
		ID:          connULID,
		ConnectedAt: time.Now(),
		Subscriber:  sub,
	}
	h.mu.Unlock()

	cancel := func() {
		h.Unsubscribe(connULID)
	}
	return sub, cancel
}

// Unsubscribe removes a subscriber from the hub. Calling it twice is a no-op.
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	if log := logger.L(); log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connULID.String())
	}

	h.mu.Lock()
	info, ok := h.conns[connULID]
	if ok {
		delete(h.conns, connULID)
		// closing under the write lock means Broadcast never sends on a closed channel
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
	}
	h.mu.Unlock()
}

// Broadcast delivers ev to every subscriber
func (h *Hub) Broadcast(_ context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}

	log := logger.L()
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("broadcasting event", "note_id", ev.Note.ID, "event_type", ev.Type)
	}

	h.mu.RLock()
	for _, info := range h.conns {
		sendOrDrop(info.Subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			if log != nil {
				log.Warn("outbox full, dropping event", "conn_id", info.ID.String(), "event_type", ev.Type)
			}
		})
	}
	h.mu.RUnlock()
}

// GetSubscriberCount returns the current number of subscribers
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns current counters for observability / tests.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	return h.GetSubscriberCount(), atomic.LoadUint64(&h.dropped)
}
