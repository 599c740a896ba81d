package engine

import "sync"

// Scope collects the cleanups of one mounted section so that unmount is a
// single call. Cleanups run in reverse order of registration.
type Scope struct {
	mu       sync.Mutex
	cleanups []func()
	closed   bool
}

// NewScope returns an open scope.
func NewScope() *Scope { return &Scope{} }

// Track adds fn to the scope. On a closed scope fn runs immediately.
func (s *Scope) Track(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Close runs every cleanup once. Later calls do nothing.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	fns := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Len is the number of pending cleanups.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cleanups)
}
