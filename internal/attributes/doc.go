// Package attributes evaluates user-supplied expressions into span attributes
// for a detection run.
//
// Expressions use the expr language and see:
//   - env: the process environment as a map
//   - arch: the detected architecture (name, index, description), empty if none
//   - detected: whether an architecture was detected
//   - present: names of the architectures present on the host
//   - candidates: base names of the event files that were scanned
//
// A map result expands into one attribute per key, named <attr>.<key>.
package attributes
