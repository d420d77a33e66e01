// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package maps implements typed, validated user-space views over kernel BPF
// maps. Map descriptors are created elsewhere (see internal/loader); this
// package binds compile-time key/value types to them and speaks to the
// kernel exclusively through the sys.Gateway boundary.
package maps

import (
	"grimm.is/bpfmap/internal/sys"
)

// Kind identifies a kernel map family. Values match the kernel's
// bpf_map_type numbering.
type Kind uint32

const (
	KindUnspec Kind = iota
	KindHash
	KindArray
	KindProgArray
	KindPerfEventArray
	KindPerCPUHash
	KindPerCPUArray
	KindStackTrace
	KindCgroupArray
	KindLRUHash
	KindLRUPerCPUHash
	KindLPMTrie
	KindArrayOfMaps
	KindHashOfMaps
	KindDevmap
	KindSockmap
	KindCPUMap
	KindXSKMap
	KindSockHash
	KindCgroupStorage
	KindReusePortSockArray
	KindPerCPUCgroupStorage
	KindQueue
	KindStack
	KindSkStorage
	KindDevmapHash
	KindStructOps
	KindRingbuf
	KindInodeStorage
	KindTaskStorage
)

func (k Kind) String() string {
	switch k {
	case KindHash:
		return "hash"
	case KindArray:
		return "array"
	case KindLRUHash:
		return "lru_hash"
	case KindLPMTrie:
		return "lpm_trie"
	case KindPerCPUHash:
		return "percpu_hash"
	case KindPerCPUArray:
		return "percpu_array"
	case KindRingbuf:
		return "ringbuf"
	case KindPerfEventArray:
		return "perf_event_array"
	default:
		return "unknown"
	}
}

// Definition is the immutable part of a map descriptor, fixed at creation.
type Definition struct {
	Kind       Kind
	KeySize    uint32
	ValueSize  uint32
	MaxEntries uint32
	Flags      uint32
}

// Map is a descriptor for a kernel-resident map: its definition plus, once
// the loader has created the kernel object, the raw fd naming it. The fd's
// lifecycle is owned by the loader; this package only reads it.
type Map struct {
	name    string
	def     Definition
	gw      sys.Gateway
	fd      sys.RawFD
	created bool
}

// NewMap builds a descriptor that is not yet backed by a kernel object.
// Views cannot be constructed until BindFD records the created object.
func NewMap(name string, def Definition, gw sys.Gateway) *Map {
	return &Map{
		name: name,
		def:  def,
		gw:   gw,
	}
}

// Name returns the map's name.
func (m *Map) Name() string { return m.name }

// Definition returns the immutable definition record.
func (m *Map) Definition() Definition { return m.def }

// BindFD records the fd of the created kernel object. Called once by the
// loading subsystem after creation succeeds.
func (m *Map) BindFD(fd sys.RawFD) {
	m.fd = fd
	m.created = true
}

// FD returns the fd of the kernel object, or ErrNotCreated if the map has
// not been created yet.
func (m *Map) FD() (sys.RawFD, error) {
	if !m.created {
		return 0, ErrNotCreated
	}
	return m.fd, nil
}

// Access provides read access to a map descriptor: lookup and iteration.
//
// The capability is closed to this package; the implementations are *Map
// (owned, also mutable), the view returned by (*Map).ReadOnly, and the
// borrows handed out by a Shared handle.
type Access interface {
	borrow() *Map
}

// MutableAccess additionally permits insert and remove.
type MutableAccess interface {
	Access
	borrowMut() *Map
}

func (m *Map) borrow() *Map    { return m }
func (m *Map) borrowMut() *Map { return m }

// ReadOnly returns an immutable borrow of the descriptor. Views built from
// it can look up and iterate but not insert or remove.
func (m *Map) ReadOnly() Access {
	return readOnly{m}
}

type readOnly struct {
	m *Map
}

func (r readOnly) borrow() *Map { return r.m }
