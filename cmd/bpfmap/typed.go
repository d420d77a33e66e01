// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"strconv"
	"unsafe"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/maps"
)

// The CLI works with integer-keyed, integer-valued maps. Typed views are
// compile-time generic, so the 4- and 8-byte key/value combinations are
// instantiated here and selected from the map definition at runtime.

type word interface {
	~uint32 | ~uint64
}

// typedMap adapts one HashMap instantiation to the CLI's string-based
// surface.
type typedMap interface {
	Get(key string) (string, bool, error)
	Put(key, value string, flags uint64) error
	Del(key string) error
	Keys() ([]string, error)
	Dump() ([][2]string, error)
}

// openTyped selects the instantiation matching the map definition.
func openTyped(a maps.Access, def maps.Definition) (typedMap, error) {
	switch {
	case def.KeySize == 4 && def.ValueSize == 4:
		return newTyped[uint32, uint32](a)
	case def.KeySize == 4 && def.ValueSize == 8:
		return newTyped[uint32, uint64](a)
	case def.KeySize == 8 && def.ValueSize == 4:
		return newTyped[uint64, uint32](a)
	case def.KeySize == 8 && def.ValueSize == 8:
		return newTyped[uint64, uint64](a)
	default:
		return nil, apperrors.Errorf(apperrors.KindValidation,
			"unsupported key/value sizes %d/%d: the CLI handles 4- and 8-byte integers",
			def.KeySize, def.ValueSize)
	}
}

type typed[K, V word] struct {
	h *maps.HashMap[K, V]
}

func newTyped[K, V word](a maps.Access) (typedMap, error) {
	h, err := maps.NewHashMap[K, V](a)
	if err != nil {
		return nil, err
	}
	return &typed[K, V]{h: h}, nil
}

func parseWord[W word](s string) (W, error) {
	var zero W
	// Parse at the width of W so out-of-range input fails instead of
	// truncating to a different key or value.
	n, err := strconv.ParseUint(s, 0, int(unsafe.Sizeof(zero))*8)
	if err != nil {
		return zero, apperrors.Wrapf(err, apperrors.KindValidation, "parsing %q", s)
	}
	return W(n), nil
}

func formatWord[W word](w W) string {
	return strconv.FormatUint(uint64(w), 10)
}

func (t *typed[K, V]) Get(key string) (string, bool, error) {
	k, err := parseWord[K](key)
	if err != nil {
		return "", false, err
	}
	v, ok, err := t.h.Get(k, 0)
	if err != nil || !ok {
		return "", ok, err
	}
	return formatWord(v), true, nil
}

func (t *typed[K, V]) Put(key, value string, flags uint64) error {
	k, err := parseWord[K](key)
	if err != nil {
		return err
	}
	v, err := parseWord[V](value)
	if err != nil {
		return err
	}
	return t.h.Insert(k, v, flags)
}

func (t *typed[K, V]) Del(key string) error {
	k, err := parseWord[K](key)
	if err != nil {
		return err
	}
	return t.h.Remove(k)
}

func (t *typed[K, V]) Keys() ([]string, error) {
	var keys []string
	for k, err := range t.h.Keys() {
		if err != nil {
			return keys, err
		}
		keys = append(keys, formatWord(k))
	}
	return keys, nil
}

func (t *typed[K, V]) Dump() ([][2]string, error) {
	var entries [][2]string
	for e, err := range t.h.All() {
		if err != nil {
			return entries, err
		}
		entries = append(entries, [2]string{formatWord(e.Key), formatWord(e.Value)})
	}
	return entries, nil
}
