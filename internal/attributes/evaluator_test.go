package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mrzor/trident-support/internal/config"
	"github.com/mrzor/trident-support/internal/detect"
	"github.com/mrzor/trident-support/internal/evtsdir"
	"github.com/mrzor/trident-support/internal/pmu"
)

var skl = pmu.Info{Index: 22, Name: "skl", Description: "Intel Skylake", Present: true}

func sklResult() *detect.Result {
	return detect.Match(
		[]pmu.Info{{Index: 1, Name: "perf", Present: true}, skl},
		[]evtsdir.Candidate{{BaseName: "skl", Extension: "evts"}, {BaseName: "hsw", Extension: "evts"}},
	)
}

func TestEvaluator_Simple(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "site", Expression: `env["SITE"]`},
		{Name: "arch.name", Expression: `arch.name`},
		{Name: "arch.index", Expression: `arch.index`},
		{Name: "ok", Expression: `detected`},
	})
	require.NoError(t, err)

	env := Env(sklResult(), []string{"SITE=cern", "MALFORMED"})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("site", "cern"),
		attribute.String("arch.name", "skl"),
		attribute.Int("arch.index", 22),
		attribute.Bool("ok", true),
	}, evaluator.Evaluate(env))
}

func TestEvaluator_ListsAndFunctions(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "present", Expression: `join(present, ",")`},
		{Name: "candidates", Expression: `len(candidates)`},
		{Name: "has_hsw", Expression: `"hsw" in candidates`},
	})
	require.NoError(t, err)

	got := evaluator.Evaluate(Env(sklResult(), nil))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("present", "perf,skl"),
		attribute.Int("candidates", 2),
		attribute.Bool("has_hsw", true),
	}, got)
}

func TestEvaluator_MapExpansion(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "detected", Expression: `arch`},
	})
	require.NoError(t, err)

	got := evaluator.Evaluate(Env(sklResult(), nil))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("detected.description", "Intel Skylake"),
		attribute.Int("detected.index", 22),
		attribute.String("detected.name", "skl"),
	}, got)
}

func TestEvaluator_SanitizesExpandedKeys(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "e", Expression: `env`},
	})
	require.NoError(t, err)

	got := evaluator.Evaluate(Env(nil, []string{"A-B=1", "C.D=2"}))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("e.A_B", "1"),
		attribute.String("e.C_D", "2"),
	}, got)
}

func TestEvaluator_NoDetection(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "ok", Expression: `detected`},
		{Name: "arch", Expression: `arch`},
	})
	require.NoError(t, err)

	got := evaluator.Evaluate(Env(detect.Match(nil, nil), nil))

	assert.Equal(t, []attribute.KeyValue{attribute.Bool("ok", false)}, got)
}

func TestEvaluator_CompileError(t *testing.T) {
	_, err := NewEvaluator([]config.CustomAttribute{
		{Name: "bad", Expression: `unknown_var + `},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestEvaluator_RuntimeErrorSkipsAttribute(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{
		{Name: "first", Expression: `present[5]`},
		{Name: "second", Expression: `"fine"`},
	})
	require.NoError(t, err)

	got := evaluator.Evaluate(Env(sklResult(), nil))

	assert.Equal(t, []attribute.KeyValue{attribute.String("second", "fine")}, got)
}

func TestEvaluator_Empty(t *testing.T) {
	evaluator, err := NewEvaluator(nil)
	require.NoError(t, err)
	assert.Nil(t, evaluator.Evaluate(Env(nil, nil)))
}

func TestSanitizeAttributeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"with-dash", "with_dash"},
		{"dots.and spaces", "dots_and_spaces"},
		{"UPPER_123", "UPPER_123"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeAttributeName(tt.in))
		})
	}
}
