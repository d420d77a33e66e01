// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build armbe || mips || mips64p32

package sys

import "unsafe"

// pointer pads the 4-byte address out to the kernel's __aligned_u64 slot.
// On big-endian targets the address occupies the high half.
type pointer struct {
	pad uint32
	ptr unsafe.Pointer
}
