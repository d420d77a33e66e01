// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sys

import (
	"sync"

	"golang.org/x/sys/unix"
)

// SimGateway is a stateful in-memory stand-in for the kernel's BPF map
// subsystem. It maintains per-fd map tables with errno-faithful failures so
// map views behave the same against it as against a real kernel. Used by
// tests and the CLI's simulation mode.
type SimGateway struct {
	mu     sync.Mutex
	nextFD RawFD
	maps   map[RawFD]*simMap
}

type simMap struct {
	keySize    int
	valueSize  int
	maxEntries int
	entries    map[string][]byte
	// order preserves insertion order so traversal is deterministic.
	order []string
}

// NewSimGateway creates an empty simulated kernel.
func NewSimGateway() *SimGateway {
	return &SimGateway{
		nextFD: 3,
		maps:   make(map[RawFD]*simMap),
	}
}

// CreateMap allocates a simulated map and returns its fd.
func (s *SimGateway) CreateMap(keySize, valueSize, maxEntries uint32) RawFD {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd := s.nextFD
	s.nextFD++
	s.maps[fd] = &simMap{
		keySize:    int(keySize),
		valueSize:  int(valueSize),
		maxEntries: int(maxEntries),
		entries:    make(map[string][]byte),
	}
	return fd
}

func (s *SimGateway) lookupMap(fd RawFD, key []byte) (*simMap, error) {
	m, ok := s.maps[fd]
	if !ok {
		return nil, unix.EBADF
	}
	if key != nil && len(key) != m.keySize {
		return nil, unix.EINVAL
	}
	return m, nil
}

func (s *SimGateway) LookupElem(fd RawFD, key, valueOut []byte, flags uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookupMap(fd, key)
	if err != nil {
		return -1, err
	}
	v, ok := m.entries[string(key)]
	if !ok {
		return -1, unix.ENOENT
	}
	if len(valueOut) != m.valueSize {
		return -1, unix.EINVAL
	}
	copy(valueOut, v)
	return 0, nil
}

func (s *SimGateway) UpdateElem(fd RawFD, key, value []byte, flags uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookupMap(fd, key)
	if err != nil {
		return -1, err
	}
	if len(value) != m.valueSize {
		return -1, unix.EINVAL
	}
	k := string(key)
	_, exists := m.entries[k]
	switch flags {
	case 1: // BPF_NOEXIST
		if exists {
			return -1, unix.EEXIST
		}
	case 2: // BPF_EXIST
		if !exists {
			return -1, unix.ENOENT
		}
	}
	if !exists {
		if len(m.entries) >= m.maxEntries {
			return -1, unix.E2BIG
		}
		m.order = append(m.order, k)
	}
	m.entries[k] = append([]byte(nil), value...)
	return 0, nil
}

func (s *SimGateway) DeleteElem(fd RawFD, key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookupMap(fd, key)
	if err != nil {
		return -1, err
	}
	k := string(key)
	if _, ok := m.entries[k]; !ok {
		return -1, unix.ENOENT
	}
	delete(m.entries, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return 0, nil
}

// GetNextKey follows the kernel hash map contract: a nil or no longer
// present key restarts traversal from the first key; past the last key it
// signals ENOENT.
func (s *SimGateway) GetNextKey(fd RawFD, key, nextKeyOut []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookupMap(fd, key)
	if err != nil {
		return -1, err
	}
	if len(nextKeyOut) != m.keySize {
		return -1, unix.EINVAL
	}
	if len(m.order) == 0 {
		return -1, unix.ENOENT
	}

	next := -1
	if key == nil {
		next = 0
	} else {
		k := string(key)
		if _, ok := m.entries[k]; !ok {
			next = 0
		} else {
			for i, o := range m.order {
				if o == k {
					next = i + 1
					break
				}
			}
		}
	}
	if next < 0 || next >= len(m.order) {
		return -1, unix.ENOENT
	}
	copy(nextKeyOut, m.order[next])
	return 0, nil
}

// Entries returns how many entries the map behind fd currently holds.
func (s *SimGateway) Entries(fd RawFD) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.maps[fd]
	if !ok {
		return 0
	}
	return len(m.entries)
}
