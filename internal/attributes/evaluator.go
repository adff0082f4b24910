package attributes

import (
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mrzor/trident-support/internal/config"
	"github.com/mrzor/trident-support/internal/detect"
)

// Evaluator handles compilation and evaluation of custom attribute expressions.
type Evaluator struct {
	customAttrs   []config.CustomAttribute
	compiledExprs []*vm.Program
}

// typeEnv is the environment shape used to type-check expressions.
func typeEnv() map[string]interface{} {
	return map[string]interface{}{
		"env":        map[string]string{},
		"arch":       map[string]interface{}{},
		"detected":   false,
		"present":    []string{},
		"candidates": []string{},
	}
}

// NewEvaluator creates a new attribute evaluator.
// It pre-compiles all custom attribute expressions so that errors surface
// before any detection work.
func NewEvaluator(customAttrs []config.CustomAttribute) (*Evaluator, error) {
	compiledExprs := make([]*vm.Program, len(customAttrs))
	for i, attr := range customAttrs {
		program, err := expr.Compile(attr.Expression, expr.Env(typeEnv()))
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression for attribute %q: %w", attr.Name, err)
		}
		compiledExprs[i] = program
	}

	return &Evaluator{
		customAttrs:   customAttrs,
		compiledExprs: compiledExprs,
	}, nil
}

// Env builds the evaluation environment for a detection result.
// environ is in os.Environ() form.
func Env(res *detect.Result, environ []string) map[string]interface{} {
	envMap := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}

	arch := map[string]interface{}{}
	present := []string{}
	candidates := []string{}
	detected := false
	if res != nil {
		detected = res.Detected
		if res.Detected {
			arch["name"] = res.Arch.Name
			arch["index"] = res.Arch.Index
			arch["description"] = res.Arch.Description
		}
		for _, p := range res.Present {
			present = append(present, p.Name)
		}
		for _, c := range res.Candidates {
			candidates = append(candidates, c.BaseName)
		}
	}

	return map[string]interface{}{
		"env":        envMap,
		"arch":       arch,
		"detected":   detected,
		"present":    present,
		"candidates": candidates,
	}
}

// Evaluate runs every expression against env. Expressions that fail at run
// time are logged and skipped.
func (e *Evaluator) Evaluate(env map[string]interface{}) []attribute.KeyValue {
	if len(e.customAttrs) == 0 {
		return nil
	}

	var attrs []attribute.KeyValue
	for i, customAttr := range e.customAttrs {
		output, err := expr.Run(e.compiledExprs[i], env)
		if err != nil {
			log.Printf("Warning: failed to evaluate expression for attribute %q: %v", customAttr.Name, err)
			continue
		}
		attrs = append(attrs, toAttributes(customAttr.Name, output)...)
	}

	return attrs
}

// toAttributes converts an expression result. Maps expand into one attribute
// per key, in key order.
func toAttributes(name string, output interface{}) []attribute.KeyValue {
	outputValue := reflect.ValueOf(output)
	if outputValue.Kind() != reflect.Map {
		return []attribute.KeyValue{scalar(name, output)}
	}

	keys := outputValue.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		attrName := name + "." + sanitizeAttributeName(fmt.Sprint(key.Interface()))
		attrs = append(attrs, scalar(attrName, outputValue.MapIndex(key).Interface()))
	}
	return attrs
}

// scalar keeps bools and integers typed; everything else becomes a string.
func scalar(name string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case bool:
		return attribute.Bool(name, val)
	case int:
		return attribute.Int(name, val)
	case int64:
		return attribute.Int64(name, val)
	default:
		return attribute.String(name, fmt.Sprint(v))
	}
}

// sanitizeAttributeName replaces non-alphanumeric characters with underscores.
// This ensures attribute names are safe for OpenTelemetry.
func sanitizeAttributeName(name string) string {
	result := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result[i] = c
		} else {
			result[i] = '_'
		}
	}
	return string(result)
}
