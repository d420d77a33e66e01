// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package sys provides the narrow syscall boundary through which map views
// touch kernel BPF state. On Linux it issues bpf(2) directly; a stateful
// in-memory simulator backs tests and simulation mode.
package sys

import (
	"errors"

	"golang.org/x/sys/unix"
)

// RawFD names a created kernel map object. It is opaque to everything above
// the gateway; ownership of the descriptor stays with the loading subsystem.
type RawFD int

// bpf(2) commands used by the map element operations.
const (
	cmdMapLookupElem = 1
	cmdMapUpdateElem = 2
	cmdMapDeleteElem = 3
	cmdMapGetNextKey = 4
)

// Gateway is the only path between typed map views and kernel map state.
// Each operation takes raw byte buffers sized by the map definition and
// returns the raw syscall result code alongside the OS error, if any.
//
// A nil error means the kernel accepted the call. ENOENT is a normal signal
// for LookupElem (entry absent) and GetNextKey (end of map); callers classify
// it with IsNotExist.
type Gateway interface {
	LookupElem(fd RawFD, key, valueOut []byte, flags uint64) (int, error)
	UpdateElem(fd RawFD, key, value []byte, flags uint64) (int, error)
	DeleteElem(fd RawFD, key []byte) (int, error)
	GetNextKey(fd RawFD, key, nextKeyOut []byte) (int, error)
}

// IsNotExist reports whether err is the kernel's "no such entry" signal:
// a missing key on lookup or delete, or end of map on get-next-key.
func IsNotExist(err error) bool {
	return errors.Is(err, unix.ENOENT)
}
