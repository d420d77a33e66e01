// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package loader

import (
	"github.com/cilium/ebpf"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/logging"
	"grimm.is/bpfmap/internal/maps"
	"grimm.is/bpfmap/internal/sys"
)

// KernelMap couples a typed-view descriptor with the cilium/ebpf object that
// owns the underlying fd. Closing it releases the kernel reference; any view
// built on the descriptor is dead afterwards.
type KernelMap struct {
	m   *maps.Map
	obj *ebpf.Map
}

// Map returns the descriptor for building views.
func (k *KernelMap) Map() *maps.Map { return k.m }

// Close releases the kernel object.
func (k *KernelMap) Close() error { return k.obj.Close() }

// Pin pins the kernel object at path so it survives this process.
func (k *KernelMap) Pin(path string) error {
	if err := k.obj.Pin(path); err != nil {
		return apperrors.Wrapf(err, apperrors.KindInternal, "pinning map %q", k.m.Name())
	}
	return nil
}

// CreateMap creates a new kernel map and binds its fd into a descriptor
// served by gw.
func CreateMap(name string, def maps.Definition, gw sys.Gateway, log *logging.Logger) (*KernelMap, error) {
	obj, err := ebpf.NewMap(&ebpf.MapSpec{
		Name:       name,
		Type:       ebpf.MapType(def.Kind),
		KeySize:    def.KeySize,
		ValueSize:  def.ValueSize,
		MaxEntries: def.MaxEntries,
		Flags:      def.Flags,
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindInternal, "creating map %q", name)
	}

	m := maps.NewMap(name, def, gw)
	m.BindFD(sys.RawFD(obj.FD()))

	log.Info("Created kernel map",
		"name", name,
		"kind", def.Kind.String(),
		"key_size", def.KeySize,
		"value_size", def.ValueSize,
		"max_entries", def.MaxEntries)

	return &KernelMap{m: m, obj: obj}, nil
}

// OpenPinned opens a map pinned on a BPF filesystem and binds its fd into a
// descriptor served by gw. The definition is read back from the kernel.
func OpenPinned(path string, gw sys.Gateway, log *logging.Logger) (*KernelMap, error) {
	obj, err := ebpf.LoadPinnedMap(path, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindNotFound, "opening pinned map %s", path)
	}

	info, err := obj.Info()
	if err != nil {
		obj.Close()
		return nil, apperrors.Wrapf(err, apperrors.KindInternal, "reading map info for %s", path)
	}

	def := maps.Definition{
		Kind:       maps.Kind(info.Type),
		KeySize:    info.KeySize,
		ValueSize:  info.ValueSize,
		MaxEntries: info.MaxEntries,
		Flags:      info.Flags,
	}
	m := maps.NewMap(info.Name, def, gw)
	m.BindFD(sys.RawFD(obj.FD()))

	log.Debug("Opened pinned map",
		"path", path,
		"name", info.Name,
		"kind", def.Kind.String())

	return &KernelMap{m: m, obj: obj}, nil
}

// Loaded holds the maps of a loaded eBPF object file alongside the
// cilium/ebpf collection that owns their fds.
type Loaded struct {
	Collection *Collection

	objs *ebpf.Collection
}

// Close releases every kernel object in the collection.
func (l *Loaded) Close() error {
	l.objs.Close()
	return nil
}

// LoadObject loads an eBPF ELF object file and registers every map it
// declares. Program attachment is out of scope; only the maps are surfaced.
func LoadObject(path string, gw sys.Gateway, log *logging.Logger) (*Loaded, error) {
	objs, err := ebpf.LoadCollection(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindValidation, "loading object %s", path)
	}

	coll := NewCollection()
	for name, obj := range objs.Maps {
		info, err := obj.Info()
		if err != nil {
			objs.Close()
			return nil, apperrors.Wrapf(err, apperrors.KindInternal, "reading map info for %q", name)
		}
		def := maps.Definition{
			Kind:       maps.Kind(info.Type),
			KeySize:    info.KeySize,
			ValueSize:  info.ValueSize,
			MaxEntries: info.MaxEntries,
			Flags:      info.Flags,
		}
		m := maps.NewMap(name, def, gw)
		m.BindFD(sys.RawFD(obj.FD()))
		if err := coll.Add(m); err != nil {
			objs.Close()
			return nil, err
		}
	}

	log.Info("Loaded eBPF object", "path", path, "maps", len(objs.Maps))
	return &Loaded{Collection: coll, objs: objs}, nil
}
