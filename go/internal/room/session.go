package room

import "sync"

// Session holds the local player identity for the lifetime of the client
// session, the Go analogue of the original session-scoped storage. At
// most one identity is bound at a time.
type Session struct {
	mu       sync.Mutex
	username string
}

// Bind stores username as the local identity.
func (s *Session) Bind(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

// Username returns the bound identity, empty if none.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Clear drops the bound identity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
}
