// Package authflag is the observable store behind the patient-area gate.
// It deliberately implements no real security: the flag is whatever the
// login stub last wrote. Consumers follow the external-subscription
// contract (Subscribe / Snapshot / ServerSnapshot) so every observer sees
// the same value and first paint never disagrees with the server.
package authflag

import (
	"sync"
	"time"
)

// State is the persisted auth flag.
type State struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	LoggedInAt      *time.Time `json:"loggedInAt,omitempty"`
}

// Store is a watchable holder of the auth flag. The zero value is unusable;
// use New.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]chan State
	nextID      int
}

func New() *Store {
	return &Store{subscribers: map[int]chan State{}}
}

// Snapshot returns the current flag.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ServerSnapshot is the value used before any client state is known:
// always unauthenticated.
func (s *Store) ServerSnapshot() State {
	return State{}
}

// Set replaces the flag and notifies subscribers. Slow subscribers drop
// intermediate updates rather than block the writer.
func (s *Store) Set(state State) {
	s.mu.Lock()
	s.state = state
	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
	s.mu.Unlock()
}

// Subscribe registers an observer and returns its channel plus an
// unsubscribe function.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.subscribers[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
		s.mu.Unlock()
	}
}

// Login sets the flag with the current time, the shape the login stub
// writes.
func (s *Store) Login(now time.Time) {
	s.Set(State{IsAuthenticated: true, LoggedInAt: &now})
}

// Logout clears the flag.
func (s *Store) Logout() {
	s.Set(State{})
}
