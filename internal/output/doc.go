// Package output renders detection results for people and for pipelines.
//
// Text output keeps the historical two-line form that wrapper scripts grep
// for:
//
//	trident-support: Scanning with metrics from /etc/trident/counters
//	trident-support: Intel Skylake architecture is detected, use <skl.evts>
//
// YAML output carries the same facts plus the present architectures, the
// scanned candidates and any duplicate-match warnings.
package output
