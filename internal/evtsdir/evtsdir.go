// Package evtsdir lists event-definition files in a directory.
//
// An event-definition file is named <arch>.evts, where <arch> is the canonical
// name of a performance-monitoring architecture. Other entries are ignored.
package evtsdir

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Extension marks event-definition files. Matching is exact and case-sensitive.
const Extension = "evts"

// maxExtLen is the longest extension an entry name may carry.
const maxExtLen = 4

// Candidate is a directory entry split into base name and extension.
type Candidate struct {
	BaseName  string
	Extension string
}

// FileName returns the entry name the candidate was parsed from.
func (c Candidate) FileName() string {
	return c.BaseName + "." + c.Extension
}

// ParseName splits an entry name at its last dot. It returns false when the
// name has no dot, an empty base name, or an extension that is empty or longer
// than four characters.
func ParseName(name string) (Candidate, bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return Candidate{}, false
	}
	ext := name[dot+1:]
	if ext == "" || len(ext) > maxExtLen {
		return Candidate{}, false
	}
	return Candidate{BaseName: name[:dot], Extension: ext}, true
}

// Scan returns the event-definition files at the root of fsys, sorted by name.
// Entries that do not parse, or whose extension is not "evts", are skipped.
func Scan(fsys fs.FS) ([]Candidate, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading event directory: %w", err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		c, ok := ParseName(entry.Name())
		if !ok || c.Extension != Extension {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ScanDir scans the directory at path. See Scan.
func ScanDir(path string) ([]Candidate, error) {
	return Scan(os.DirFS(path))
}
