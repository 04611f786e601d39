package transform

import "fmt"

// Stage names in pipeline order.
const (
	StageEscape       = "escape"
	StageRoots        = "roots"
	StageFractions    = "fractions"
	StageBigOperators = "big-operators"
	StageSymbols      = "symbols"
	StageDecorators   = "decorators"
	StageLiteralText  = "literal-text"
	StageLimits       = "limits"
	StageEnvironments = "environments"
	StageDelimiters   = "delimiters"
	StageScripts      = "scripts"
)

// StageOrder lists the pipeline stages in the order they run. Roots run before
// fractions so a root inside a numerator is already wrapped when the fraction
// braces are matched. Scripts always run last.
var StageOrder = []string{
	StageEscape,
	StageRoots,
	StageFractions,
	StageBigOperators,
	StageSymbols,
	StageDecorators,
	StageLiteralText,
	StageLimits,
	StageEnvironments,
	StageDelimiters,
	StageScripts,
}

func buildStages(tables Tables, display bool) []Stage {
	return []Stage{
		{Name: StageEscape, Rules: escapeRules()},
		{Name: StageRoots, Rules: rootRules()},
		{Name: StageFractions, Rules: fractionRules()},
		{Name: StageBigOperators, Rules: bigOperatorRules(display)},
		{Name: StageSymbols, Rules: symbolRules(tables)},
		{Name: StageDecorators, Rules: decoratorRules()},
		{Name: StageLiteralText, Rules: literalTextRules()},
		{Name: StageLimits, Rules: limitRules()},
		{Name: StageEnvironments, Rules: environmentRules()},
		{Name: StageDelimiters, Rules: delimiterRules()},
		{Name: StageScripts, Rules: scriptRules()},
	}
}

// entityRef matches the tail of a named or numeric character reference.
const entityRef = `#?[a-zA-Z0-9]{1,32};`

// escapeRules keep input text literal. An ampersand that would read as a
// character reference is escaped here; bare ampersands stay until the
// environments stage has used them as column separators.
func escapeRules() []Rule {
	return []Rule{
		rule(`&(?=`+entityRef+`)`, `&amp;`),
		rule(`<`, `&lt;`),
		rule(`>`, `&gt;`),
	}
}

func rootRules() []Rule {
	return []Rule{
		rule(`\\sqrt\[([^\]]*)\]`+arg,
			`<span class="katex-nthroot"><span class="katex-nthroot-index">$1</span><span class="katex-nthroot-root">$2</span></span>`),
		rule(`\\sqrt`+arg,
			`<span class="katex-sqrt"><span class="katex-sqrt-root">$1</span></span>`),
		rule(`\\binom`+arg+arg,
			`<span class="katex-binom"><span class="katex-binom-top">$1</span><span class="katex-binom-bottom">$2</span></span>`),
	}
}

func fractionRules() []Rule {
	return []Rule{
		rule(`\\[dt]?frac`+arg+arg,
			`<span class="katex-fraction"><span class="katex-numerator">$1</span><span class="katex-denominator">$2</span></span>`),
	}
}

var bigOperators = []SymbolEntry{
	{Name: "sum", Glyph: "∑"},
	{Name: "prod", Glyph: "∏"},
	{Name: "int", Glyph: "∫"},
	{Name: "oint", Glyph: "∮"},
}

// bigOperatorRules emits, per operator, the most specific shape first: both
// bounds in either order, lower only, upper only, then the bare operator.
func bigOperatorRules(display bool) []Rule {
	class := "katex-op"
	if display {
		class += " katex-op-display"
	}
	rules := make([]Rule, 0, len(bigOperators)*5)
	for _, op := range bigOperators {
		name := `\\` + op.Name
		open := fmt.Sprintf(`<span class="%s">%s`, class, op.Glyph)
		rules = append(rules,
			rule(name+`_`+arg+`\^`+arg, open+`<sub>$1</sub><sup>$2</sup></span>`),
			rule(name+`\^`+arg+`_`+arg, open+`<sub>$2</sub><sup>$1</sup></span>`),
			rule(name+`_`+arg, open+`<sub>$1</sub></span>`),
			rule(name+`\^`+arg, open+`<sup>$1</sup></span>`),
			rule(macro(op.Name), open+`</span>`),
		)
	}
	return rules
}

func symbolRules(tables Tables) []Rule {
	var rules []Rule
	for _, table := range []SymbolTable{tables.Greek, tables.Symbols} {
		for _, entry := range table.Entries() {
			if entry.Glyph == "" {
				continue
			}
			rules = append(rules, rule(macro(entry.Name),
				`<span class="katex-symbol">`+literal(entry.Glyph)+`</span>`))
		}
	}
	return rules
}

var decorators = []SymbolEntry{
	{Name: "overline", Glyph: "\u0304"},
	{Name: "bar", Glyph: "\u0304"},
	{Name: "hat", Glyph: "\u0302"},
	{Name: "tilde", Glyph: "\u0303"},
	{Name: "vec", Glyph: "\u20d7"},
	{Name: "dot", Glyph: "\u0307"},
}

func decoratorRules() []Rule {
	rules := make([]Rule, 0, len(decorators))
	for _, d := range decorators {
		rules = append(rules, rule(`\\`+d.Name+arg,
			`<span class="katex-symbol">$1`+d.Glyph+`</span>`))
	}
	return rules
}

var namedOperators = []string{
	"arcsin", "arccos", "arctan",
	"ln", "log", "sin", "cos", "tan",
	"det", "max", "min", "sup", "inf",
}

func literalTextRules() []Rule {
	rules := []Rule{
		rule(`\\text`+arg, `<span class="katex-text">$1</span>`),
		rule(`\\mathrm`+arg, `<span class="katex-text">$1</span>`),
		rule(`\\operatorname`+arg, `<span class="katex-operator">$1</span>`),
	}
	for _, name := range namedOperators {
		rules = append(rules, rule(macro(name), `<span class="katex-operator">`+name+`</span>`))
	}
	return rules
}

func limitRules() []Rule {
	return []Rule{
		rule(`\\lim_`+arg, `<span class="katex-operator">lim</span><sub>$1</sub>`),
		rule(macro("lim"), `<span class="katex-operator">lim</span>`),
	}
}

func delimiterRules() []Rule {
	return []Rule{
		rule(`\\left\(`, `<span class="katex-paren">(</span>`),
		rule(`\\right\)`, `<span class="katex-paren">)</span>`),
		rule(`\\left\[`, `<span class="katex-bracket">[</span>`),
		rule(`\\right\]`, `<span class="katex-bracket">]</span>`),
		rule(`\\left\\\{`, `<span class="katex-brace">{</span>`),
		rule(`\\right\\\}`, `<span class="katex-brace">}</span>`),
		rule(`\\left\|`, `<span class="katex-bracket">|</span>`),
		rule(`\\right\|`, `<span class="katex-bracket">|</span>`),
		rule(`\\left\.|\\right\.`, ``),
		rule(macro("Leftrightarrow"), `<span class="katex-symbol">⇔</span>`),
		rule(macro("leftrightarrow"), `<span class="katex-symbol">↔</span>`),
		rule(macro("rightarrow"), `<span class="katex-symbol">→</span>`),
		rule(macro("leftarrow"), `<span class="katex-symbol">←</span>`),
		rule(macro("Rightarrow"), `<span class="katex-symbol">⇒</span>`),
		rule(macro("Leftarrow"), `<span class="katex-symbol">⇐</span>`),
		rule(macro("mapsto"), `<span class="katex-symbol">↦</span>`),
		rule(macro("uparrow"), `<span class="katex-symbol">↑</span>`),
		rule(macro("downarrow"), `<span class="katex-symbol">↓</span>`),
		rule(macro("to"), `<span class="katex-symbol">→</span>`),
		rule(macro("qquad"), "\u2003\u2003"),
		rule(macro("quad"), "\u2003"),
		rule(`\\;`, " "),
		rule(`\\,`, "\u2009"),
		rule(`\\%`, `%`),
	}
}

func scriptRules() []Rule {
	return []Rule{
		rule(`_`+arg, `<sub class="katex-subscript">$1</sub>`),
		rule(`_([a-zA-Z0-9])`, `<sub class="katex-subscript">$1</sub>`),
		rule(`\^`+arg, `<sup class="katex-superscript">$1</sup>`),
		rule(`\^([a-zA-Z0-9])`, `<sup class="katex-superscript">$1</sup>`),
	}
}
