// Package slot holds the single optional process handle owned by the
// application. All reads and writes go through Store, which serializes
// them with a mutex.
package slot

import (
	"errors"
	"sync"
)

var (
	// ErrOccupied is returned by Put when the slot already holds a handle.
	ErrOccupied = errors.New("slot: already occupied")

	// ErrDrained is returned by Put once the slot has been drained.
	ErrDrained = errors.New("slot: drained")
)

// Slot is the mutable view handed to Store.Do callbacks. It must not be
// retained after the callback returns.
type Slot[H any] struct {
	handle   H
	occupied bool
	drained  bool
}

// Occupied reports whether the slot holds a handle.
func (s *Slot[H]) Occupied() bool {
	return s.occupied
}

// Drained reports whether the slot has been sealed by Drain.
func (s *Slot[H]) Drained() bool {
	return s.drained
}

// Put stores h in an empty slot.
func (s *Slot[H]) Put(h H) error {
	if s.drained {
		return ErrDrained
	}
	if s.occupied {
		return ErrOccupied
	}
	s.handle = h
	s.occupied = true
	return nil
}

// Take moves the handle out of the slot, leaving it empty.
func (s *Slot[H]) Take() (H, bool) {
	var zero H
	if !s.occupied {
		return zero, false
	}
	h := s.handle
	s.handle = zero
	s.occupied = false
	return h, true
}

// Drain takes the handle, if any, and seals the slot so that later Puts
// fail with ErrDrained.
func (s *Slot[H]) Drain() (H, bool) {
	h, ok := s.Take()
	s.drained = true
	return h, ok
}

// Store guards a Slot. The zero value is an empty, usable store.
type Store[H any] struct {
	mu   sync.Mutex
	slot Slot[H]
}

// New returns an empty store.
func New[H any]() *Store[H] {
	return &Store[H]{}
}

// Do runs fn with exclusive access to the slot and returns its error.
// The lock is released even if fn panics.
func (s *Store[H]) Do(fn func(*Slot[H]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.slot)
}

// Occupied reports whether the store currently holds a handle.
func (s *Store[H]) Occupied() bool {
	return Access(s, func(sl *Slot[H]) bool { return sl.Occupied() })
}

// Access is Do for callbacks that produce a value.
func Access[H, R any](s *Store[H], fn func(*Slot[H]) R) R {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.slot)
}
