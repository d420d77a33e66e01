// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"reflect"

	"grimm.is/bpfmap/internal/sys"
)

// Flag values for Insert, forwarded verbatim to the kernel.
const (
	UpdateAny     uint64 = 0 // create or overwrite
	UpdateNoExist uint64 = 1 // create only
	UpdateExist   uint64 = 2 // overwrite only
)

// Operation names carried by SyscallError, matching the kernel helpers they
// correspond to.
const (
	opLookup  = "bpf_map_lookup_elem"
	opUpdate  = "bpf_map_update_elem"
	opDelete  = "bpf_map_delete_elem"
	opNextKey = "bpf_map_get_next_key"
)

// HashMap is a typed view over a kernel hash map shared with eBPF programs.
// K and V must be plain old data; the view validates their sizes against the
// map definition once, at construction, and never again.
//
// The kernel map is mutated concurrently by other processes and by programs
// running in the kernel. Single operations are as atomic as the kernel makes
// them; sequences of operations, including iteration, are not.
type HashMap[K, V any] struct {
	access Access
	mut    MutableAccess // nil for read-only views
}

// NewHashMap builds a typed view from any access mode. If a grants mutable
// access, Insert and Remove are available; otherwise they fail with
// ErrReadOnly.
//
// Validation order: map kind, key size, value size, created handle. The
// first failing check wins.
func NewHashMap[K, V any](a Access) (*HashMap[K, V], error) {
	if err := checkPod(reflect.TypeFor[K]()); err != nil {
		return nil, &InvalidTypeError{Type: reflect.TypeFor[K](), Reason: err.Error()}
	}
	if err := checkPod(reflect.TypeFor[V]()); err != nil {
		return nil, &InvalidTypeError{Type: reflect.TypeFor[V](), Reason: err.Error()}
	}

	def := a.borrow().Definition()
	if def.Kind != KindHash {
		return nil, &InvalidMapTypeError{Actual: def.Kind}
	}
	if size := sizeOf[K](); size != def.KeySize {
		return nil, &InvalidKeySizeError{Actual: size, Expected: def.KeySize}
	}
	if size := sizeOf[V](); size != def.ValueSize {
		return nil, &InvalidValueSizeError{Actual: size, Expected: def.ValueSize}
	}
	if _, err := a.borrow().FD(); err != nil {
		return nil, err
	}

	mut, _ := a.(MutableAccess)
	return &HashMap[K, V]{access: a, mut: mut}, nil
}

// Get returns a copy of the value stored under key. A missing entry is not
// an error: it returns the zero value and false. flags is forwarded to the
// kernel unchanged.
func (h *HashMap[K, V]) Get(key K, flags uint64) (V, bool, error) {
	var value V

	m := h.access.borrow()
	fd, err := m.FD()
	if err != nil {
		return value, false, err
	}
	code, err := m.gw.LookupElem(fd, podIn(&key), podOut(&value), flags)
	if err != nil {
		var zero V
		if sys.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, &SyscallError{Op: opLookup, Code: code, Errno: err}
	}
	return value, true, nil
}

// Insert stores value under key. flags selects create-only, overwrite-only
// or either (UpdateNoExist, UpdateExist, UpdateAny).
func (h *HashMap[K, V]) Insert(key K, value V, flags uint64) error {
	if h.mut == nil {
		return ErrReadOnly
	}
	m := h.mut.borrowMut()
	fd, err := m.FD()
	if err != nil {
		return err
	}
	if code, err := m.gw.UpdateElem(fd, podIn(&key), podIn(&value), flags); err != nil {
		return &SyscallError{Op: opUpdate, Code: code, Errno: err}
	}
	return nil
}

// Remove deletes the entry stored under key. Removing an absent key fails at
// the kernel boundary and surfaces as a SyscallError.
func (h *HashMap[K, V]) Remove(key K) error {
	if h.mut == nil {
		return ErrReadOnly
	}
	m := h.mut.borrowMut()
	fd, err := m.FD()
	if err != nil {
		return err
	}
	if code, err := m.gw.DeleteElem(fd, podIn(&key)); err != nil {
		return &SyscallError{Op: opDelete, Code: code, Errno: err}
	}
	return nil
}
