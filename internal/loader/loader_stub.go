// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package loader

import (
	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/logging"
	"grimm.is/bpfmap/internal/maps"
	"grimm.is/bpfmap/internal/sys"
)

// KernelMap is unavailable off Linux; simulation mode still works.
type KernelMap struct {
	m *maps.Map
}

func (k *KernelMap) Map() *maps.Map        { return k.m }
func (k *KernelMap) Close() error          { return nil }
func (k *KernelMap) Pin(path string) error { return errUnsupported() }

func errUnsupported() error {
	return apperrors.New(apperrors.KindUnavailable, "kernel map loading requires linux")
}

func CreateMap(name string, def maps.Definition, gw sys.Gateway, log *logging.Logger) (*KernelMap, error) {
	return nil, errUnsupported()
}

func OpenPinned(path string, gw sys.Gateway, log *logging.Logger) (*KernelMap, error) {
	return nil, errUnsupported()
}

type Loaded struct {
	Collection *Collection
}

func (l *Loaded) Close() error { return nil }

func LoadObject(path string, gw sys.Gateway, log *logging.Logger) (*Loaded, error) {
	return nil, errUnsupported()
}
