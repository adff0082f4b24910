// Package kernelcaps collects kernel facts that decide whether perf event
// counters can actually be read once an architecture is detected.
package kernelcaps

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Report holds the probed kernel capabilities.
type Report struct {
	KernelRelease string
	// Paranoid is kernel.perf_event_paranoid; ParanoidKnown is false when it
	// could not be read.
	Paranoid      int
	ParanoidKnown bool
	// PerfEventBPF is nil when BPF programs of type perf_event can be loaded.
	PerfEventBPF error
}

// Probe gathers a Report. procRoot is where procfs is mounted, normally "/proc".
func Probe(procRoot string) Report {
	r := Report{
		KernelRelease: kernelRelease(),
		PerfEventBPF:  probePerfEventBPF(),
	}
	r.Paranoid, r.ParanoidKnown = readParanoid(procRoot)
	return r
}

// readParanoid reads kernel.perf_event_paranoid from procfs.
func readParanoid(procRoot string) (int, bool) {
	if procRoot == "" {
		procRoot = "/proc"
	}
	data, err := os.ReadFile(filepath.Join(procRoot, "sys", "kernel", "perf_event_paranoid"))
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return v, true
}

// CanCountCPUWide reports whether an unprivileged process may open system-wide
// counters. Levels above 0 restrict CPU-wide events to CAP_PERFMON.
func (r Report) CanCountCPUWide() bool {
	return r.ParanoidKnown && r.Paranoid <= 0
}

// Lines renders the report for verbose logging.
func (r Report) Lines() []string {
	paranoid := "unknown"
	if r.ParanoidKnown {
		paranoid = strconv.Itoa(r.Paranoid)
	}
	cpuWide := "restricted to CAP_PERFMON"
	if r.CanCountCPUWide() {
		cpuWide = "allowed"
	} else if !r.ParanoidKnown {
		cpuWide = "unknown"
	}
	bpf := "supported"
	if r.PerfEventBPF != nil {
		bpf = fmt.Sprintf("unavailable (%v)", r.PerfEventBPF)
	}
	return []string{
		"kernel release: " + r.KernelRelease,
		"perf_event_paranoid: " + paranoid,
		"cpu-wide counters: " + cpuWide,
		"perf_event BPF programs: " + bpf,
	}
}

// Attributes returns the report as span attributes.
func (r Report) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("host.kernel.release", r.KernelRelease),
		attribute.Bool("trident.perf_event.bpf", r.PerfEventBPF == nil),
	}
	if r.ParanoidKnown {
		attrs = append(attrs,
			attribute.Int("trident.perf_event.paranoid", r.Paranoid),
			attribute.Bool("trident.perf_event.cpu_wide", r.CanCountCPUWide()),
		)
	}
	return attrs
}
