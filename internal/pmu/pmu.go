// Package pmu defines the performance-monitoring architecture model shared by
// the host provider, the event directory scanner and the matcher.
package pmu

// MaxNameLen bounds name comparisons. Bytes past this length never take part
// in deciding whether two architecture names are equal.
const MaxNameLen = 1024

// Info describes one architecture as reported by a Provider.
type Info struct {
	Index       int    // Provider-assigned identifier
	Name        string // Short canonical name, e.g. "skl"
	Description string // Human-readable name, e.g. "Intel Skylake"
	Present     bool   // Whether the architecture is present on this host
}

// Provider reports the architectures known to an introspection backend.
type Provider interface {
	// Count returns the exclusive upper bound of architecture indices.
	Count() int
	// InfoAt returns the architecture at index. The boolean is false when no
	// architecture is defined there.
	InfoAt(index int) (Info, bool)
}

// Enumerate walks every index of p and returns the architectures present on
// the host, in index order. Undefined indices are skipped.
func Enumerate(p Provider) []Info {
	var present []Info
	for i := 0; i < p.Count(); i++ {
		info, ok := p.InfoAt(i)
		if !ok || !info.Present {
			continue
		}
		present = append(present, info)
	}
	return present
}

// NamesEqual reports whether a and b are equal within the first MaxNameLen bytes.
func NamesEqual(a, b string) bool {
	return bounded(a) == bounded(b)
}

func bounded(s string) string {
	if len(s) > MaxNameLen {
		return s[:MaxNameLen]
	}
	return s
}
