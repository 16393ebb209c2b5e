// Package memory provides the in-process session store, used in tests and
// single-instance deployments.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
)

// Store implements ports.Store in memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	states map[ports.Key]string
	data   map[ports.Key]flow.Data
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		states: make(map[ports.Key]string),
		data:   make(map[ports.Key]flow.Data),
	}
}

func (s *Store) GetState(_ context.Context, key ports.Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key], nil
}

func (s *Store) SetState(_ context.Context, key ports.Key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = token
	return nil
}

func (s *Store) DeleteState(_ context.Context, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

func (s *Store) GetData(_ context.Context, key ports.Key) (flow.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Copy on read so callers cannot mutate stored maps by reference.
	return cloneData(s.data[key]), nil
}

func (s *Store) SetData(_ context.Context, key ports.Key, data flow.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cloneData(data)
	return nil
}

func (s *Store) DeleteData(_ context.Context, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Clear drops everything. Test helper.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[ports.Key]string)
	s.data = make(map[ports.Key]flow.Data)
}

func cloneData(d flow.Data) flow.Data {
	out := flow.Data{}
	for k, v := range d {
		out[k] = v
	}
	return out
}
