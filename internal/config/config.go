package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// ErrUsage marks command-line errors.
var ErrUsage = errors.New("usage error")

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// CustomAttribute is a span attribute computed from an expression.
type CustomAttribute struct {
	Name       string
	Expression string
}

// Config holds the parsed command-line configuration
type Config struct {
	// EventsDir holds the <arch>.evts event-definition files
	EventsDir string
	// Format selects the stdout format: text or yaml
	Format string
	// List prints every known architecture instead of detecting one
	List bool
	// Verbose logs host diagnostics to stderr
	Verbose bool
	// ShowVersion prints version information and exits
	ShowVersion bool
	// CustomAttributes are extra attributes for the detection span
	CustomAttributes []CustomAttribute
}

// EnvConfig holds settings read from the environment.
type EnvConfig struct {
	SysfsRoot string `env:"TRIDENT_SYSFS_ROOT" envDefault:"/sys"`
	ProcRoot  string `env:"TRIDENT_PROC_ROOT" envDefault:"/proc"`
}

// ParseEnvConfig parses EnvConfig from environment variables
func ParseEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return &cfg, nil
}

type flagValues struct {
	format  string
	list    bool
	verbose bool
	version bool
	attrs   []string
}

func newFlagSet(programName string, v *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.StringVarP(&v.format, "format", "f", FormatText, "output format: text or yaml")
	fs.BoolVarP(&v.list, "list", "l", false, "list every known architecture and whether it is present")
	fs.BoolVarP(&v.verbose, "verbose", "v", false, "log host diagnostics to stderr")
	fs.StringArrayVarP(&v.attrs, "attr", "a", nil, "custom span attribute as name=expression (repeatable)")
	fs.BoolVar(&v.version, "version", false, "print version information and exit")
	return fs
}

// Usage returns the help text for programName.
func Usage(programName string) string {
	var v flagValues
	fs := newFlagSet(programName, &v)
	return fmt.Sprintf("Usage: %s [flags] <event_counters_directory>\n\nFlags:\n%s", programName, fs.FlagUsages())
}

// ParseArgs parses command-line arguments and returns a Config.
// Expected format: program_name [flags] <event_counters_directory>
// The directory may be omitted only with --list or --version.
func ParseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no arguments provided", ErrUsage)
	}
	programName := args[0]

	var v flagValues
	fs := newFlagSet(programName, &v)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg := &Config{
		List:        v.list,
		Verbose:     v.verbose,
		ShowVersion: v.version,
	}

	switch v.format {
	case FormatText, FormatYAML:
		cfg.Format = v.format
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want %s or %s)", ErrUsage, v.format, FormatText, FormatYAML)
	}

	for _, raw := range v.attrs {
		attr, err := parseCustomAttribute(raw)
		if err != nil {
			return nil, err
		}
		cfg.CustomAttributes = append(cfg.CustomAttributes, attr)
	}

	positional := fs.Args()
	switch {
	case len(positional) > 1:
		return nil, fmt.Errorf("%w: expected one event counters directory, got %d arguments", ErrUsage, len(positional))
	case len(positional) == 1:
		cfg.EventsDir = positional[0]
	case !cfg.List && !cfg.ShowVersion:
		return nil, fmt.Errorf("%w: %s [flags] <event_counters_directory>", ErrUsage, programName)
	}

	return cfg, nil
}

// parseCustomAttribute splits name=expression. The expression may itself
// contain '=' characters.
func parseCustomAttribute(raw string) (CustomAttribute, error) {
	name, expr, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(expr) == "" {
		return CustomAttribute{}, fmt.Errorf("%w: custom attribute %q must be name=expression", ErrUsage, raw)
	}
	return CustomAttribute{Name: name, Expression: expr}, nil
}
