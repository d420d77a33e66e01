// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package loader owns the creation of kernel map objects and hands their
// descriptors to the typed view layer. On Linux it creates and opens real
// maps through cilium/ebpf; in simulation mode it creates them inside a
// sys.SimGateway from a yaml manifest.
package loader

import (
	"sort"
	"sync"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/maps"
)

// Collection is a registry of named shared map handles. Callers borrow maps
// by name the same way regardless of how the maps were created.
type Collection struct {
	mu   sync.RWMutex
	maps map[string]*maps.Shared
}

// NewCollection returns an empty registry.
func NewCollection() *Collection {
	return &Collection{maps: make(map[string]*maps.Shared)}
}

// Add registers m under its name.
func (c *Collection) Add(m *maps.Map) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.maps[m.Name()]; ok {
		return apperrors.Errorf(apperrors.KindValidation, "duplicate map name %q", m.Name())
	}
	c.maps[m.Name()] = maps.Share(m)
	return nil
}

// Map takes a shared borrow of the named map. The caller must Close the ref.
func (c *Collection) Map(name string) (*maps.Ref, error) {
	s, err := c.shared(name)
	if err != nil {
		return nil, err
	}
	return s.Borrow()
}

// MapMut takes an exclusive borrow of the named map. The caller must Close
// the ref.
func (c *Collection) MapMut(name string) (*maps.RefMut, error) {
	s, err := c.shared(name)
	if err != nil {
		return nil, err
	}
	return s.BorrowMut()
}

// Shared returns the shared handle for the named map.
func (c *Collection) Shared(name string) (*maps.Shared, error) {
	return c.shared(name)
}

func (c *Collection) shared(name string) (*maps.Shared, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.maps[name]
	if !ok {
		return nil, apperrors.Errorf(apperrors.KindNotFound, "map %q not found", name)
	}
	return s, nil
}

// Names lists the registered map names, sorted.
func (c *Collection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.maps))
	for name := range c.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
