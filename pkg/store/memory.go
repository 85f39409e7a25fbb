// Package store provides an in-memory Store for the dispatcher.
//
// The state is changed only by a Reducer, from the dispatched notifications.
// Subscribers are notified after each change, outside the lock.
package store

import (
	"sync"

	"github.com/keboola/go-resource-fetch/pkg/dispatch"
)

// Reducer returns the new state, the old state must not be modified.
type Reducer func(state any, n dispatch.Notification) any

// Listener is called after each dispatched notification with the new state.
type Listener func(n dispatch.Notification, state any)

type Memory struct {
	reducer Reducer

	lock        *sync.RWMutex
	state       any
	nextID      int
	subscribers map[int]Listener
	order       []int
}

func NewMemory(initial any, reducer Reducer) *Memory {
	if reducer == nil {
		panic("reducer cannot be nil")
	}
	return &Memory{reducer: reducer, lock: &sync.RWMutex{}, state: initial, subscribers: make(map[int]Listener)}
}

func (s *Memory) Dispatch(n dispatch.Notification) {
	s.lock.Lock()
	s.state = s.reducer(s.state, n)
	state := s.state
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.subscribers[id])
	}
	s.lock.Unlock()

	for _, fn := range listeners {
		fn(n, state)
	}
}

func (s *Memory) State() any {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// Subscribe registers the listener, the returned function removes it.
func (s *Memory) Subscribe(fn Listener) (unsubscribe func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextID++
	id := s.nextID
	s.subscribers[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		if _, found := s.subscribers[id]; !found {
			return
		}
		delete(s.subscribers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}
