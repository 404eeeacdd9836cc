package auth

import (
	"sync"

	"github.com/rdservicos/portal/internal/models"
)

// Session binds an authenticated principal for the lifetime of one
// interactive session. It is an explicit object handed to callers, never
// ambient global state, so two sessions can never observe each other.
type Session struct {
	mu        sync.RWMutex
	principal *models.Principal
}

func NewSession() *Session {
	return &Session{}
}

// Bind records p as the session's principal.
func (s *Session) Bind(p models.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &p
}

// Current returns the bound principal. The false return means no one is
// logged in, which is a valid state rather than a failure.
func (s *Session) Current() (models.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return models.Principal{}, false
	}
	return *s.principal, true
}

// End clears the binding. Safe to call on an unbound session.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = nil
}
