// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package sys

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

func bufPtr(b []byte) pointer {
	if len(b) == 0 {
		return pointer{}
	}
	return pointer{ptr: unsafe.Pointer(&b[0])}
}

// mapElemAttr mirrors the element-access arm of the kernel's bpf_attr union:
// map_fd, key pointer, value/next_key pointer, flags.
type mapElemAttr struct {
	mapFD uint32
	_     uint32
	key   pointer
	value pointer
	flags uint64
}

// LinuxGateway issues bpf(2) against the running kernel.
type LinuxGateway struct{}

// Native returns the gateway for the running OS.
func Native() Gateway {
	return LinuxGateway{}
}

func bpf(cmd int, attr *mapElemAttr) (int, error) {
	r1, _, errno := unix.Syscall(unix.SYS_BPF, uintptr(cmd), uintptr(unsafe.Pointer(attr)), unsafe.Sizeof(*attr))
	if errno != 0 {
		return -1, errno
	}
	return int(r1), nil
}

func (LinuxGateway) LookupElem(fd RawFD, key, valueOut []byte, flags uint64) (int, error) {
	attr := mapElemAttr{
		mapFD: uint32(fd),
		key:   bufPtr(key),
		value: bufPtr(valueOut),
		flags: flags,
	}
	ret, err := bpf(cmdMapLookupElem, &attr)
	runtime.KeepAlive(key)
	runtime.KeepAlive(valueOut)
	return ret, err
}

func (LinuxGateway) UpdateElem(fd RawFD, key, value []byte, flags uint64) (int, error) {
	attr := mapElemAttr{
		mapFD: uint32(fd),
		key:   bufPtr(key),
		value: bufPtr(value),
		flags: flags,
	}
	ret, err := bpf(cmdMapUpdateElem, &attr)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return ret, err
}

func (LinuxGateway) DeleteElem(fd RawFD, key []byte) (int, error) {
	attr := mapElemAttr{
		mapFD: uint32(fd),
		key:   bufPtr(key),
	}
	ret, err := bpf(cmdMapDeleteElem, &attr)
	runtime.KeepAlive(key)
	return ret, err
}

func (LinuxGateway) GetNextKey(fd RawFD, key, nextKeyOut []byte) (int, error) {
	// A nil key asks the kernel for the first key in the map.
	attr := mapElemAttr{
		mapFD: uint32(fd),
		key:   bufPtr(key),
		value: bufPtr(nextKeyOut),
	}
	ret, err := bpf(cmdMapGetNextKey, &attr)
	runtime.KeepAlive(key)
	runtime.KeepAlive(nextKeyOut)
	return ret, err
}
