// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package testutil

import (
	"os"
	"runtime"
	"testing"
)

// RequireKernel skips the test unless it can reach a real Linux kernel with
// bpf(2) privileges. Tests covered by the simulated gateway do not need this.
func RequireKernel(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("Skipping test: requires linux")
	}
	if os.Getuid() != 0 {
		t.Skip("Skipping test: requires root privileges")
	}
}
