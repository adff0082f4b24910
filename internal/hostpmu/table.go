package hostpmu

import "github.com/klauspost/cpuid/v2"

// modelRange is an inclusive range of CPUID model numbers.
type modelRange struct{ lo, hi int }

func model(m int) modelRange { return modelRange{m, m} }

// architecture is one row of the static table. Presence is decided by
// whichever selector is set: generic, the CPU signature, or a sysfs PMU device.
type architecture struct {
	index int
	name  string
	desc  string

	generic func(h *Host) bool

	vendors []cpuid.Vendor
	family  int // 0 matches any family of the listed vendors
	models  []modelRange

	device string
}

var intel = []cpuid.Vendor{cpuid.Intel}
var amd = []cpuid.Vendor{cpuid.AMD, cpuid.Hygon}

// Index 0 is reserved; no architecture is ever defined there.
// Indices are stable: new rows get new indices, existing ones never move.
var architectures = []architecture{
	{index: 1, name: "perf", desc: "perf_events generic PMU", generic: func(h *Host) bool { return len(h.devices) > 0 }},
	{index: 2, name: "ix86arch", desc: "Intel X86 architectural PMU", vendors: intel},
	{index: 3, name: "amd64", desc: "AMD64", vendors: amd},

	{index: 10, name: "core", desc: "Intel Core", vendors: intel, family: 6, models: []modelRange{model(15), model(22), model(23), model(29)}},
	{index: 11, name: "atom", desc: "Intel Atom", vendors: intel, family: 6, models: []modelRange{model(28), model(38), model(39), model(53), model(54)}},
	{index: 12, name: "nhm", desc: "Intel Nehalem", vendors: intel, family: 6, models: []modelRange{model(26), model(30), model(31), model(46)}},
	{index: 13, name: "wsm", desc: "Intel Westmere", vendors: intel, family: 6, models: []modelRange{model(37), model(44), model(47)}},
	{index: 14, name: "snb", desc: "Intel Sandy Bridge", vendors: intel, family: 6, models: []modelRange{model(42)}},
	{index: 15, name: "snbep", desc: "Intel Sandy Bridge EP", vendors: intel, family: 6, models: []modelRange{model(45)}},
	{index: 16, name: "ivb", desc: "Intel Ivy Bridge", vendors: intel, family: 6, models: []modelRange{model(58)}},
	{index: 17, name: "ivbep", desc: "Intel Ivy Bridge EP", vendors: intel, family: 6, models: []modelRange{model(62)}},
	{index: 18, name: "hsw", desc: "Intel Haswell", vendors: intel, family: 6, models: []modelRange{model(60), model(69), model(70)}},
	{index: 19, name: "hswep", desc: "Intel Haswell EP", vendors: intel, family: 6, models: []modelRange{model(63)}},
	{index: 20, name: "bdw", desc: "Intel Broadwell", vendors: intel, family: 6, models: []modelRange{model(61), model(71)}},
	{index: 21, name: "bdwep", desc: "Intel Broadwell EP", vendors: intel, family: 6, models: []modelRange{model(79), model(86)}},
	{index: 22, name: "skl", desc: "Intel Skylake", vendors: intel, family: 6, models: []modelRange{model(78), model(94), model(142), model(158)}},
	{index: 23, name: "skx", desc: "Intel Skylake X", vendors: intel, family: 6, models: []modelRange{model(85)}},
	{index: 24, name: "icl", desc: "Intel Icelake", vendors: intel, family: 6, models: []modelRange{model(125), model(126)}},
	{index: 25, name: "icx", desc: "Intel Icelake X", vendors: intel, family: 6, models: []modelRange{model(106), model(108)}},
	{index: 26, name: "spr", desc: "Intel Sapphire Rapids", vendors: intel, family: 6, models: []modelRange{model(143)}},
	{index: 27, name: "slm", desc: "Intel Silvermont", vendors: intel, family: 6, models: []modelRange{model(55), model(77)}},
	{index: 28, name: "glm", desc: "Intel Goldmont", vendors: intel, family: 6, models: []modelRange{model(92), model(95)}},
	{index: 29, name: "knl", desc: "Intel Knights Landing", vendors: intel, family: 6, models: []modelRange{model(87)}},

	{index: 40, name: "amd64_fam10h", desc: "AMD64 Fam10h", vendors: amd, family: 0x10},
	{index: 41, name: "amd64_fam15h", desc: "AMD64 Fam15h", vendors: amd, family: 0x15},
	{index: 42, name: "amd64_fam16h", desc: "AMD64 Fam16h", vendors: amd, family: 0x16},
	{index: 43, name: "amd64_fam17h_zen1", desc: "AMD64 Fam17h Zen1", vendors: amd, family: 0x17, models: []modelRange{{0x00, 0x2f}}},
	{index: 44, name: "amd64_fam17h_zen2", desc: "AMD64 Fam17h Zen2", vendors: amd, family: 0x17, models: []modelRange{{0x30, 0xff}}},
	{index: 45, name: "amd64_fam19h_zen3", desc: "AMD64 Fam19h Zen3", vendors: amd, family: 0x19, models: []modelRange{{0x00, 0x0f}, {0x20, 0x5f}}},
	{index: 46, name: "amd64_fam19h_zen4", desc: "AMD64 Fam19h Zen4", vendors: amd, family: 0x19, models: []modelRange{{0x10, 0x1f}, {0x60, 0xaf}}},

	{index: 60, name: "arm_ac53", desc: "ARM Cortex A53", device: "armv8_cortex_a53"},
	{index: 61, name: "arm_ac57", desc: "ARM Cortex A57", device: "armv8_cortex_a57"},
	{index: 62, name: "arm_ac72", desc: "ARM Cortex A72", device: "armv8_cortex_a72"},
	{index: 63, name: "arm_n1", desc: "ARM Neoverse N1", device: "armv8_neoverse_n1"},
	{index: 64, name: "arm_n2", desc: "ARM Neoverse N2", device: "armv8_neoverse_n2"},
	{index: 65, name: "arm_v1", desc: "ARM Neoverse V1", device: "armv8_neoverse_v1"},
}

func (a *architecture) matchesCPU(cpu CPUIdent) bool {
	if len(a.vendors) == 0 {
		return false
	}
	vendorOK := false
	for _, v := range a.vendors {
		if v == cpu.Vendor {
			vendorOK = true
			break
		}
	}
	if !vendorOK {
		return false
	}
	if a.family != 0 && a.family != cpu.Family {
		return false
	}
	if len(a.models) == 0 {
		return true
	}
	for _, r := range a.models {
		if cpu.Model >= r.lo && cpu.Model <= r.hi {
			return true
		}
	}
	return false
}
