// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"iter"

	"grimm.is/bpfmap/internal/sys"
)

// Entry is one key/value pair produced by HashMap.All.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Keys returns the map's keys in kernel traversal order.
//
// The traversal is best-effort under concurrent mutation: entries inserted
// after the range starts may or may not be observed, and a key is yielded if
// it existed at the moment the cursor stepped onto it, even if it is deleted
// immediately after. End of map terminates the sequence normally; any other
// cursor failure yields exactly one SyscallError and the sequence ends.
//
// Each range over the returned sequence opens a fresh cursor; cursor state
// is never shared or resumed between ranges.
func (h *HashMap[K, V]) Keys() iter.Seq2[K, error] {
	return func(yield func(K, error) bool) {
		var zero K

		m := h.access.borrow()
		fd, err := m.FD()
		if err != nil {
			yield(zero, err)
			return
		}

		var prev *K
		for {
			var next K
			var prevBytes []byte
			if prev != nil {
				prevBytes = podIn(prev)
			}
			code, err := m.gw.GetNextKey(fd, prevBytes, podOut(&next))
			if err != nil {
				if !sys.IsNotExist(err) {
					yield(zero, &SyscallError{Op: opNextKey, Code: code, Errno: err})
				}
				return
			}
			if !yield(next, nil) {
				return
			}
			cur := next
			prev = &cur
		}
	}
}

// All returns the map's key/value pairs in kernel traversal order, pairing
// each cursor key with a lookup of its current value.
//
// The cursor step and the value lookup consult the kernel at different
// instants, so a key deleted in between is silently skipped rather than
// yielded — unlike Keys, where cursor-time existence is authoritative. A
// lookup failure other than absence yields the error for that key and the
// traversal continues; a cursor failure ends the sequence as in Keys.
func (h *HashMap[K, V]) All() iter.Seq2[Entry[K, V], error] {
	return func(yield func(Entry[K, V], error) bool) {
		for key, err := range h.Keys() {
			if err != nil {
				yield(Entry[K, V]{}, err)
				return
			}
			value, ok, err := h.Get(key, 0)
			if err != nil {
				if !yield(Entry[K, V]{Key: key}, err) {
					return
				}
				continue
			}
			if !ok {
				// Deleted between the cursor step and the lookup.
				continue
			}
			if !yield(Entry[K, V]{Key: key, Value: value}, nil) {
				return
			}
		}
	}
}

// Count walks the map's keys and reports how many are live. It shares the
// traversal semantics of Keys, including its weak consistency under
// concurrent writers, and works with any access mode.
func Count(a Access) (int, error) {
	m := a.borrow()
	fd, err := m.FD()
	if err != nil {
		return 0, err
	}

	keySize := int(m.Definition().KeySize)
	prev := make([]byte, 0, keySize)
	next := make([]byte, keySize)

	n := 0
	for {
		var prevBytes []byte
		if n > 0 {
			prevBytes = prev
		}
		code, err := m.gw.GetNextKey(fd, prevBytes, next)
		if err != nil {
			if sys.IsNotExist(err) {
				return n, nil
			}
			return n, &SyscallError{Op: opNextKey, Code: code, Errno: err}
		}
		n++
		prev = append(prev[:0], next...)
	}
}
