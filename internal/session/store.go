// Package session keeps live visit sessions in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"visitprep/internal/core"
)

// ErrNotFound is returned for an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Store maps session IDs to independent visit sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*core.VisitSession
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*core.VisitSession), now: time.Now}
}

// Create starts an empty session for patientID.
func (s *Store) Create(patientID string) *core.VisitSession {
	sess := core.NewVisitSession(uuid.New(), patientID, s.now())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get looks up a session and marks it as used.
func (s *Store) Get(id uuid.UUID) (*core.VisitSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.Touch(s.now())
	return sess, nil
}

// Delete removes a session.  Deleting an unknown ID is a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than idleTTL and returns how many were
// removed.  A non-positive idleTTL removes nothing.
func (s *Store) Sweep(now time.Time, idleTTL time.Duration) int {
	if idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActive()) > idleTTL {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
