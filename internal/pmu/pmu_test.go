package pmu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sliceProvider serves a fixed sparse table; nil entries are undefined indices.
type sliceProvider []*Info

func (p sliceProvider) Count() int { return len(p) }

func (p sliceProvider) InfoAt(index int) (Info, bool) {
	if index < 0 || index >= len(p) || p[index] == nil {
		return Info{}, false
	}
	return *p[index], true
}

func TestEnumerate_SkipsUndefinedAndAbsent(t *testing.T) {
	p := sliceProvider{
		nil,
		{Index: 1, Name: "perf", Description: "perf_events generic PMU", Present: true},
		{Index: 2, Name: "hsw", Description: "Intel Haswell", Present: false},
		nil,
		{Index: 4, Name: "skl", Description: "Intel Skylake", Present: true},
	}

	got := Enumerate(p)

	assert.Equal(t, []Info{
		{Index: 1, Name: "perf", Description: "perf_events generic PMU", Present: true},
		{Index: 4, Name: "skl", Description: "Intel Skylake", Present: true},
	}, got)
}

func TestEnumerate_EmptyProvider(t *testing.T) {
	assert.Empty(t, Enumerate(sliceProvider{}))
	assert.Empty(t, Enumerate(sliceProvider{nil, nil}))
}

func TestNamesEqual(t *testing.T) {
	long := strings.Repeat("a", MaxNameLen)

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "skl", "skl", true},
		{"case differs", "SKL", "skl", false},
		{"prefix only", "sk", "skl", false},
		{"empty", "", "", true},
		{"equal up to bound", long + "x", long + "y", true},
		{"differs before bound", "b" + long[1:], long, false},
		{"one truncated one exact", long + "tail", long, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NamesEqual(tt.a, tt.b))
		})
	}
}
