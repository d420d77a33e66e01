// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package loader

import (
	"os"

	"gopkg.in/yaml.v3"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/maps"
	"grimm.is/bpfmap/internal/sys"
)

// Manifest declares the maps to create in simulation mode.
type Manifest struct {
	Maps []ManifestMap `yaml:"maps"`
}

// ManifestMap is one declared map.
type ManifestMap struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	KeySize    uint32 `yaml:"key_size"`
	ValueSize  uint32 `yaml:"value_size"`
	MaxEntries uint32 `yaml:"max_entries"`
	Flags      uint32 `yaml:"flags"`
}

// LoadManifest reads and validates a yaml manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindNotFound, "reading manifest %s", path)
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "parsing manifest")
	}
	if len(m.Maps) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "manifest declares no maps")
	}
	for _, mm := range m.Maps {
		if mm.Name == "" {
			return nil, apperrors.New(apperrors.KindValidation, "manifest map without a name")
		}
		if _, err := ParseKind(mm.Kind); err != nil {
			return nil, apperrors.Attr(err, "map", mm.Name)
		}
		if mm.KeySize == 0 || mm.ValueSize == 0 || mm.MaxEntries == 0 {
			return nil, apperrors.Errorf(apperrors.KindValidation,
				"map %q needs non-zero key_size, value_size and max_entries", mm.Name)
		}
	}
	return &m, nil
}

// ParseKind maps a manifest kind name to the kernel map family.
func ParseKind(s string) (maps.Kind, error) {
	switch s {
	case "hash":
		return maps.KindHash, nil
	case "array":
		return maps.KindArray, nil
	case "lru_hash":
		return maps.KindLRUHash, nil
	case "percpu_hash":
		return maps.KindPerCPUHash, nil
	case "percpu_array":
		return maps.KindPerCPUArray, nil
	case "lpm_trie":
		return maps.KindLPMTrie, nil
	default:
		return maps.KindUnspec, apperrors.Errorf(apperrors.KindValidation, "unknown map kind %q", s)
	}
}

// Definition converts the manifest entry to a map definition.
func (mm ManifestMap) Definition() (maps.Definition, error) {
	kind, err := ParseKind(mm.Kind)
	if err != nil {
		return maps.Definition{}, err
	}
	return maps.Definition{
		Kind:       kind,
		KeySize:    mm.KeySize,
		ValueSize:  mm.ValueSize,
		MaxEntries: mm.MaxEntries,
		Flags:      mm.Flags,
	}, nil
}

// CreateSim creates every declared map inside sim and returns the registry.
// Views reach the maps through via, which must route to sim; pass nil to use
// sim directly.
func (m *Manifest) CreateSim(sim *sys.SimGateway, via sys.Gateway) (*Collection, error) {
	if via == nil {
		via = sim
	}
	coll := NewCollection()
	for _, mm := range m.Maps {
		def, err := mm.Definition()
		if err != nil {
			return nil, err
		}
		mp := maps.NewMap(mm.Name, def, via)
		mp.BindFD(sim.CreateMap(def.KeySize, def.ValueSize, def.MaxEntries))
		if err := coll.Add(mp); err != nil {
			return nil, err
		}
	}
	return coll, nil
}
