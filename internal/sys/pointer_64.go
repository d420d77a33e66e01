// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !386 && !amd64p32 && !arm && !armbe && !mips && !mipsle && !mips64p32 && !mips64p32le

package sys

import "unsafe"

// pointer is a 64-bit buffer address inside a syscall attr struct. The kernel
// declares these fields __aligned_u64, so the slot is 8 bytes on every
// target; keeping the address as an unsafe.Pointer makes the garbage
// collector hold the buffer alive while the kernel reads or writes it.
type pointer struct {
	ptr unsafe.Pointer
}
