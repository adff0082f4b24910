//go:build linux

package kernelcaps

import (
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/features"
	"golang.org/x/sys/unix"
)

func kernelRelease() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "unknown"
	}
	return unix.ByteSliceToString(u.Release[:])
}

// probePerfEventBPF loads a minimal perf_event program. Without CAP_BPF the
// probe fails with a permission error, which is reported as-is.
func probePerfEventBPF() error {
	return features.HaveProgramType(ebpf.PerfEvent)
}
