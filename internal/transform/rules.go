package transform

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Rule rewrites one construct across the whole input in a single pass.
type Rule interface {
	Apply(input string) string
}

// PatternRule substitutes every match of Pattern with Template. Templates use
// $1, $2 for capture groups and $$ for a literal dollar sign.
type PatternRule struct {
	Pattern  *regexp2.Regexp
	Template string
}

// Apply implements Rule. A matcher failure leaves the input untouched.
func (r PatternRule) Apply(input string) string {
	if r.Pattern == nil {
		return input
	}
	out, err := r.Pattern.Replace(input, r.Template, -1, -1)
	if err != nil {
		return input
	}
	return out
}

// evalRule substitutes every match with the result of eval.
type evalRule struct {
	pattern *regexp2.Regexp
	eval    func(groups []string) string
}

func (r evalRule) Apply(input string) string {
	out, err := r.pattern.ReplaceFunc(input, func(m regexp2.Match) string {
		groups := m.Groups()
		values := make([]string, len(groups))
		for i := range groups {
			values[i] = groups[i].String()
		}
		return r.eval(values)
	}, -1, -1)
	if err != nil {
		return input
	}
	return out
}

// Stage is a named group of rules applied in declaration order.
type Stage struct {
	Name  string
	Rules []Rule
}

// Apply runs every rule of the stage once.
func (s Stage) Apply(input string) string {
	for _, rule := range s.Rules {
		input = rule.Apply(input)
	}
	return input
}

// boundary rejects a match when the macro name continues with a letter, so
// \in never matches the head of \infty.
const boundary = `(?![a-zA-Z])`

// arg matches one braced argument without nested braces.
const arg = `\{([^}]*)\}`

func compile(pattern string) *regexp2.Regexp {
	return regexp2.MustCompile(pattern, regexp2.None)
}

func rule(pattern, template string) Rule {
	return PatternRule{Pattern: compile(pattern), Template: template}
}

func eval(pattern string, fn func(groups []string) string) Rule {
	return evalRule{pattern: compile(pattern), eval: fn}
}

// macro returns the pattern for a backslash command with a boundary guard.
func macro(name string) string {
	return `\\` + regexp2.Escape(name) + boundary
}

// literal escapes a fixed output string for use as a replacement template.
func literal(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}
