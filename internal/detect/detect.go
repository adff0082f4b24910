// Package detect matches event-definition files against the architectures
// present on the host.
//
// The first matching (file, architecture) pair wins. Every later match is kept
// as an Anomaly: it is reported to the user but never replaces the winner. A
// directory holding redundant event files still yields a usable answer.
package detect

import (
	"errors"
	"io/fs"

	"github.com/mrzor/trident-support/internal/evtsdir"
	"github.com/mrzor/trident-support/internal/pmu"
)

// ErrNotFound is returned when no event file names a present architecture.
var ErrNotFound = errors.New("no supported architecture found")

// Anomaly is a match that was found after the result was already decided.
type Anomaly struct {
	File evtsdir.Candidate
	Arch pmu.Info
}

// Result is the outcome of one detection run.
type Result struct {
	Detected   bool
	Arch       pmu.Info
	File       evtsdir.Candidate
	Anomalies  []Anomaly
	Present    []pmu.Info
	Candidates []evtsdir.Candidate
}

// EventFile returns the file name the pipeline should load, or "" when
// nothing was detected.
func (r *Result) EventFile() string {
	if !r.Detected {
		return ""
	}
	return r.Arch.Name + "." + evtsdir.Extension
}

// Err returns ErrNotFound when nothing was detected.
func (r *Result) Err() error {
	if !r.Detected {
		return ErrNotFound
	}
	return nil
}

// Match tests every candidate, in order, against every present architecture.
func Match(present []pmu.Info, candidates []evtsdir.Candidate) *Result {
	res := &Result{
		Present:    present,
		Candidates: candidates,
	}

	for _, c := range candidates {
		if c.Extension != evtsdir.Extension {
			continue
		}
		for _, arch := range present {
			if !pmu.NamesEqual(arch.Name, c.BaseName) {
				continue
			}
			if !res.Detected {
				res.Detected = true
				res.Arch = arch
				res.File = c
				continue
			}
			res.Anomalies = append(res.Anomalies, Anomaly{File: c, Arch: arch})
		}
	}

	return res
}

// Detect enumerates p and scans fsys, then matches the two.
// A directory that cannot be read contributes no candidates; its error is
// returned alongside the result so the caller can report it.
func Detect(p pmu.Provider, fsys fs.FS) (*Result, error) {
	present := pmu.Enumerate(p)
	candidates, scanErr := evtsdir.Scan(fsys)
	return Match(present, candidates), scanErr
}
