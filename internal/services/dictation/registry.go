package dictation

import "sync"

// Registry tracks the sessions serving open dictation sockets so they can
// be stopped together at shutdown.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

// Track adds s and returns the func that removes it. Once StopAll has run,
// Track stops s immediately and reports false.
func (r *Registry) Track(s *Session) (untrack func(), ok bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Stop()
		return func() {}, false
	}
	r.sessions[s] = struct{}{}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.sessions, s)
		r.mu.Unlock()
	}, true
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StopAll stops every tracked session and refuses new ones.
func (r *Registry) StopAll() {
	r.mu.Lock()
	r.closed = true
	list := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		list = append(list, s)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range list {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()
}
