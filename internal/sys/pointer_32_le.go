// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build 386 || amd64p32 || arm || mipsle || mips64p32le

package sys

import "unsafe"

// pointer pads the 4-byte address out to the kernel's __aligned_u64 slot.
// On little-endian targets the address occupies the low half.
type pointer struct {
	ptr unsafe.Pointer
	pad uint32
}
