// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"sync"
)

// Shared is a reference-counted handle to a map descriptor. Its borrows can
// outlive the scope that created the descriptor and enforce the usual
// discipline at runtime: any number of concurrent readers, or exactly one
// writer, never both.
type Shared struct {
	m *Map

	mu      sync.Mutex
	readers int
	writer  bool
}

// Share wraps m in a shared handle.
func Share(m *Map) *Shared {
	return &Shared{m: m}
}

// Name returns the underlying map's name.
func (s *Shared) Name() string { return s.m.Name() }

// Definition returns the underlying map's definition.
func (s *Shared) Definition() Definition { return s.m.Definition() }

// Borrow takes a shared (read-only) borrow. It fails with a BorrowError
// while an exclusive borrow is active.
func (s *Shared) Borrow() (*Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer {
		return nil, &BorrowError{Name: s.m.name}
	}
	s.readers++
	return &Ref{s: s}, nil
}

// BorrowMut takes an exclusive (read-write) borrow. It fails with a
// BorrowError while any other borrow is active.
func (s *Shared) BorrowMut() (*RefMut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer || s.readers > 0 {
		return nil, &BorrowError{Name: s.m.name, Mutable: true}
	}
	s.writer = true
	return &RefMut{s: s}, nil
}

// Ref is a shared borrow. It implements Access.
type Ref struct {
	s *Shared

	mu     sync.Mutex
	closed bool
}

func (r *Ref) borrow() *Map { return r.s.m }

// Close releases the borrow. Safe to call more than once.
func (r *Ref) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.s.mu.Lock()
	r.s.readers--
	r.s.mu.Unlock()
	return nil
}

// RefMut is an exclusive borrow. It implements MutableAccess.
type RefMut struct {
	s *Shared

	mu     sync.Mutex
	closed bool
}

func (r *RefMut) borrow() *Map    { return r.s.m }
func (r *RefMut) borrowMut() *Map { return r.s.m }

// Close releases the borrow. Safe to call more than once.
func (r *RefMut) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.s.mu.Lock()
	r.s.writer = false
	r.s.mu.Unlock()
	return nil
}
