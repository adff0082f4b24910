package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/mrzor/trident-support/internal/detect"
	"github.com/mrzor/trident-support/internal/pmu"
)

// ArchReport is one architecture in a Report.
type ArchReport struct {
	Index       int    `yaml:"index"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Report is the serializable form of a detection result.
type Report struct {
	Directory    string       `yaml:"directory"`
	Detected     bool         `yaml:"detected"`
	Architecture *ArchReport  `yaml:"architecture,omitempty"`
	EventFile    string       `yaml:"event_file,omitempty"`
	Present      []ArchReport `yaml:"present"`
	Candidates   []string     `yaml:"candidates"`
	Warnings     []string     `yaml:"warnings,omitempty"`
}

func archReport(info pmu.Info) ArchReport {
	return ArchReport{Index: info.Index, Name: info.Name, Description: info.Description}
}

// NewReport builds a Report for a result obtained from dir.
func NewReport(dir string, res *detect.Result) Report {
	r := Report{
		Directory:  dir,
		Detected:   res.Detected,
		Present:    []ArchReport{},
		Candidates: []string{},
	}
	if res.Detected {
		arch := archReport(res.Arch)
		r.Architecture = &arch
		r.EventFile = res.EventFile()
	}
	for _, p := range res.Present {
		r.Present = append(r.Present, archReport(p))
	}
	for _, c := range res.Candidates {
		r.Candidates = append(r.Candidates, c.FileName())
	}
	for _, a := range res.Anomalies {
		r.Warnings = append(r.Warnings, AnomalyMessage(a))
	}
	return r
}

// AnomalyMessage describes a duplicate match.
func AnomalyMessage(a detect.Anomaly) string {
	return fmt.Sprintf("multiple architecture matches found: %s also matches %s (index %d)",
		a.File.FileName(), a.Arch.Name, a.Arch.Index)
}

// WriteScanning prints the progress line naming the scanned directory.
func WriteScanning(w io.Writer, prog, dir string) error {
	_, err := fmt.Fprintf(w, "%s: Scanning with metrics from %s\n", prog, dir)
	return err
}

// WriteText prints the success line. Nothing is written when nothing was detected.
func WriteText(w io.Writer, prog string, res *detect.Result) error {
	if !res.Detected {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %s architecture is detected, use <%s>\n",
		prog, res.Arch.Description, res.EventFile())
	return err
}

// WriteYAML encodes r as a YAML document.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	absentStyle  = lipgloss.NewStyle().Faint(true)
)

// WriteArchList prints every architecture with its presence on this host.
// Styling is dropped automatically when w is not a terminal.
func WriteArchList(w io.Writer, archs []pmu.Info) error {
	nameWidth := len("NAME")
	for _, a := range archs {
		if len(a.Name) > nameWidth {
			nameWidth = len(a.Name)
		}
	}

	row := func(index, name, desc, present string) string {
		return fmt.Sprintf("%5s  %-*s  %-7s  %s", index, nameWidth, name, present, desc)
	}

	if _, err := fmt.Fprintln(w, headerStyle.Render(row("INDEX", "NAME", "DESCRIPTION", "PRESENT"))); err != nil {
		return err
	}
	for _, a := range archs {
		style, present := absentStyle, "no"
		if a.Present {
			style, present = presentStyle, "yes"
		}
		line := row(fmt.Sprint(a.Index), a.Name, a.Description, present)
		if _, err := fmt.Fprintln(w, style.Render(line)); err != nil {
			return err
		}
	}
	return nil
}
