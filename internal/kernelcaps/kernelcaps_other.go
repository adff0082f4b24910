//go:build !linux

package kernelcaps

import (
	"errors"
	"runtime"
)

func kernelRelease() string {
	return runtime.GOOS
}

func probePerfEventBPF() error {
	return errors.New("perf_event BPF programs are only supported on Linux")
}
