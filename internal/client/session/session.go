// Package session keeps the authenticated identity for a dashboard run: the
// bearer token plus the claims the client needs for local decisions.
package session

import "sync"

// Session stores the current login. The zero value is an unauthenticated
// session ready for use.
type Session struct {
	mu    sync.RWMutex
	token string
	email string
	role  string
}

func New() *Session {
	return &Session{}
}

// Set replaces the stored identity after a successful login.
func (s *Session) Set(token, email, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.email = email
	s.role = role
}

// Clear drops the stored identity. Called on logout and whenever the server
// rejects the token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.email = ""
	s.role = ""
}

// Token returns the bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}
