package session

import (
	"sync"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
)

// Store holds the current projection. It is the single writer of session
// state: every mutation goes through Apply under the write lock, so readers
// always see the result of one complete applied event and never a torn view.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore initializes an empty store.
func NewStore() *Store {
	return &Store{}
}

// Apply folds one event into the projection.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, ev)
}

// Residents returns a copy of the current resident collection.
func (s *Store) Residents() []resident.Resident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]resident.Resident, len(s.state.Residents))
	copy(out, s.state.Residents)
	return out
}

// Alerts returns a copy of the current alert collection, newest first.
func (s *Store) Alerts() []alert.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]alert.Alert, len(s.state.Alerts))
	copy(out, s.state.Alerts)
	return out
}

// Resident looks up one resident by id. Returns a copy.
func (s *Store) Resident(id string) (resident.Resident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Residents {
		if s.state.Residents[i].ID == id {
			return s.state.Residents[i], true
		}
	}
	return resident.Resident{}, false
}

// Alert looks up one alert by id. Returns a copy.
func (s *Store) Alert(id string) (alert.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Alerts {
		if s.state.Alerts[i].ID == id {
			return s.state.Alerts[i], true
		}
	}
	return alert.Alert{}, false
}
