package evtsdir

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		entry  string
		want   Candidate
		wantOK bool
	}{
		{"event file", "skl.evts", Candidate{"skl", "evts"}, true},
		{"underscore name", "genuine_intel.evts", Candidate{"genuine_intel", "evts"}, true},
		{"last dot wins", "amd64.fam17h.evts", Candidate{"amd64.fam17h", "evts"}, true},
		{"short extension", "notes.md", Candidate{"notes", "md"}, true},
		{"backup suffix", "skl.evts.bak", Candidate{"skl.evts", "bak"}, true},
		{"no dot", "Makefile", Candidate{}, false},
		{"hidden file", ".evts", Candidate{}, false},
		{"dot entry", ".", Candidate{}, false},
		{"dotdot entry", "..", Candidate{}, false},
		{"trailing dot", "skl.", Candidate{}, false},
		{"extension too long", "skl.evtsx", Candidate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseName(tt.entry)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScan_FiltersEventFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"skl.evts":     {},
		"hsw.evts":     {},
		"README":       {},
		"icl.EVTS":     {},
		"bdw.evt":      {},
		"spr.evtsx":    {},
		"notes.txt":    {},
		"old.evts.bak": {},
	}

	got, err := Scan(fsys)
	require.NoError(t, err)

	assert.Equal(t, []Candidate{
		{BaseName: "hsw", Extension: "evts"},
		{BaseName: "skl", Extension: "evts"},
	}, got)
}

func TestScan_EmptyDirectory(t *testing.T) {
	got, err := Scan(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScanDir_MissingDirectory(t *testing.T) {
	got, err := ScanDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestScanDir_RealDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"genuine_intel.evts", "other.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "genuine_intel", got[0].BaseName)
	assert.Equal(t, "genuine_intel.evts", got[0].FileName())
}
