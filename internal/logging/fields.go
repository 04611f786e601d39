package logging

import (
	"strings"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// FieldValue renders delimiter and scan values as compact text so every
// provider logs them the same way. Other values pass through unchanged.
func FieldValue(value any) any {
	switch v := value.(type) {
	case interfaces.DelimiterSpec:
		return delimiterLabel(v)
	case []interfaces.DelimiterSpec:
		labels := make([]string, 0, len(v))
		for _, spec := range v {
			labels = append(labels, delimiterLabel(spec))
		}
		return strings.Join(labels, ",")
	case interfaces.ScanResult:
		return scanSummary(v)
	default:
		return value
	}
}

// Fields returns a copy of fields with every value passed through FieldValue.
func Fields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = FieldValue(v)
	}
	return out
}

// Args returns a copy of key/value args with every value passed through
// FieldValue. Keys are left untouched.
func Args(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, arg := range args {
		if i%2 == 1 {
			arg = FieldValue(arg)
		}
		out[i] = arg
	}
	return out
}

func scanSummary(result interfaces.ScanResult) map[string]int {
	return map[string]int{
		"nodes":         result.Nodes,
		"display":       result.DisplayRegions,
		"inline":        result.InlineRegions,
		"unterminated":  result.Unterminated,
		"formula_boxes": result.FormulaBoxes,
	}
}

// ScanResultArgs returns the scan counters as key/value args.
func ScanResultArgs(result interfaces.ScanResult) []any {
	return []any{
		"nodes", result.Nodes,
		"display", result.DisplayRegions,
		"inline", result.InlineRegions,
		"unterminated", result.Unterminated,
		"formula_boxes", result.FormulaBoxes,
	}
}

func delimiterLabel(spec interfaces.DelimiterSpec) string {
	return spec.Left + "..." + spec.Right + ":" + delimiterMode(spec.Display)
}

func delimiterMode(display bool) string {
	if display {
		return "display"
	}
	return "inline"
}
