// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package sys

import "golang.org/x/sys/unix"

// stubGateway stands in on platforms without bpf(2). Every operation fails
// with ENOSYS; use the simulator instead.
type stubGateway struct{}

// Native returns the gateway for the running OS.
func Native() Gateway {
	return stubGateway{}
}

func (stubGateway) LookupElem(fd RawFD, key, valueOut []byte, flags uint64) (int, error) {
	return -1, unix.ENOSYS
}

func (stubGateway) UpdateElem(fd RawFD, key, value []byte, flags uint64) (int, error) {
	return -1, unix.ENOSYS
}

func (stubGateway) DeleteElem(fd RawFD, key []byte) (int, error) {
	return -1, unix.ENOSYS
}

func (stubGateway) GetNextKey(fd RawFD, key, nextKeyOut []byte) (int, error) {
	return -1, unix.ENOSYS
}
