// Package hostpmu reports which performance-monitoring architectures are
// present on the running host.
//
// Detection combines two sources. The CPUID signature (vendor, family, model)
// identifies x86 core PMUs. The perf_events device list under
// /sys/bus/event_source/devices identifies ARM core PMUs and tells whether the
// kernel exposes perf_events at all.
package hostpmu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/cpuid/v2"

	"github.com/mrzor/trident-support/internal/pmu"
)

// ErrUnavailable is returned by Initialize when perf_events cannot be queried.
var ErrUnavailable = errors.New("perf_events PMU information unavailable")

// CPUIdent is the CPUID signature used to match x86 architectures.
type CPUIdent struct {
	Vendor cpuid.Vendor
	Family int
	Model  int
	Brand  string
}

// String formats the signature the way /proc/cpuinfo readers expect.
func (c CPUIdent) String() string {
	return fmt.Sprintf("%s family %d model %d (%s)", c.Vendor, c.Family, c.Model, c.Brand)
}

// HostCPU returns the CPUID signature of the running CPU.
func HostCPU() CPUIdent {
	return CPUIdent{
		Vendor: cpuid.CPU.VendorID,
		Family: cpuid.CPU.Family,
		Model:  cpuid.CPU.Model,
		Brand:  cpuid.CPU.BrandName,
	}
}

// Options configures Initialize.
type Options struct {
	// SysfsRoot is where sysfs is mounted, normally "/sys".
	SysfsRoot string
	// CPU overrides the CPUID signature. Nil means HostCPU().
	CPU *CPUIdent
}

// Host is an initialized provider. It implements pmu.Provider.
type Host struct {
	cpu     CPUIdent
	devices []string
	present map[int]bool
}

var _ pmu.Provider = (*Host)(nil)

// Initialize probes the host once. The returned Host is immutable.
func Initialize(opts Options) (*Host, error) {
	root := opts.SysfsRoot
	if root == "" {
		root = "/sys"
	}

	devices, err := listPMUDevices(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	cpu := HostCPU()
	if opts.CPU != nil {
		cpu = *opts.CPU
	}

	h := &Host{
		cpu:     cpu,
		devices: devices,
		present: make(map[int]bool, len(architectures)),
	}
	for i := range architectures {
		a := &architectures[i]
		h.present[a.index] = h.isPresent(a)
	}
	return h, nil
}

// listPMUDevices returns the PMU names registered with perf_events, sorted.
func listPMUDevices(sysfsRoot string) ([]string, error) {
	dir := filepath.Join(sysfsRoot, "bus", "event_source", "devices")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (h *Host) isPresent(a *architecture) bool {
	switch {
	case a.generic != nil:
		return a.generic(h)
	case a.device != "":
		return h.hasDevice(a.device)
	default:
		return a.matchesCPU(h.cpu)
	}
}

func (h *Host) hasDevice(name string) bool {
	i := sort.SearchStrings(h.devices, name)
	return i < len(h.devices) && h.devices[i] == name
}

// Count returns one past the highest defined architecture index.
func (h *Host) Count() int {
	maxIndex := 0
	for i := range architectures {
		if architectures[i].index > maxIndex {
			maxIndex = architectures[i].index
		}
	}
	return maxIndex + 1
}

// InfoAt returns the architecture defined at index, if any.
func (h *Host) InfoAt(index int) (pmu.Info, bool) {
	for i := range architectures {
		a := &architectures[i]
		if a.index == index {
			return h.info(a), true
		}
	}
	return pmu.Info{}, false
}

// Architectures returns every known architecture in index order.
func (h *Host) Architectures() []pmu.Info {
	infos := make([]pmu.Info, 0, len(architectures))
	for i := range architectures {
		infos = append(infos, h.info(&architectures[i]))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Index < infos[j].Index })
	return infos
}

// CPU returns the CPUID signature used for matching.
func (h *Host) CPU() CPUIdent {
	return h.cpu
}

// Devices returns the perf_events PMU device names found in sysfs.
func (h *Host) Devices() []string {
	return h.devices
}

func (h *Host) info(a *architecture) pmu.Info {
	return pmu.Info{
		Index:       a.index,
		Name:        a.name,
		Description: a.desc,
		Present:     h.present[a.index],
	}
}
