package transform

// SymbolEntry maps a bare macro name (without the leading backslash) to the
// glyph it renders as. An empty Glyph marks a known name with no substitution.
type SymbolEntry struct {
	Name  string
	Glyph string
}

// SymbolTable is an ordered, read-only lookup of macro names. Names are case
// sensitive.
type SymbolTable struct {
	entries []SymbolEntry
	index   map[string]int
}

// NewSymbolTable builds a table from entries. Later duplicates replace earlier
// ones in place so the table keeps first-seen order.
func NewSymbolTable(entries ...SymbolEntry) SymbolTable {
	table := SymbolTable{
		entries: make([]SymbolEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		if pos, ok := table.index[entry.Name]; ok {
			table.entries[pos] = entry
			continue
		}
		table.index[entry.Name] = len(table.entries)
		table.entries = append(table.entries, entry)
	}
	return table
}

// Lookup returns the glyph for name. ok is false when the name is unknown or
// carries no substitution.
func (t SymbolTable) Lookup(name string) (glyph string, ok bool) {
	pos, found := t.index[name]
	if !found {
		return "", false
	}
	glyph = t.entries[pos].Glyph
	return glyph, glyph != ""
}

// Entries returns a copy of the table in declaration order.
func (t SymbolTable) Entries() []SymbolEntry {
	return append([]SymbolEntry(nil), t.entries...)
}

// Len reports the number of names in the table.
func (t SymbolTable) Len() int {
	return len(t.entries)
}

// Tables groups the symbol tables consumed by the symbols stage. Greek is
// applied before Symbols.
type Tables struct {
	Greek   SymbolTable
	Symbols SymbolTable
}

// DefaultTables returns the built-in Greek and symbol tables.
func DefaultTables() Tables {
	return Tables{
		Greek:   GreekLetters(),
		Symbols: MathSymbols(),
	}
}

// GreekLetters returns the Greek letter table.
func GreekLetters() SymbolTable {
	return NewSymbolTable(
		SymbolEntry{"alpha", "α"}, SymbolEntry{"beta", "β"}, SymbolEntry{"gamma", "γ"},
		SymbolEntry{"delta", "δ"}, SymbolEntry{"epsilon", "ε"}, SymbolEntry{"varepsilon", "ε"},
		SymbolEntry{"zeta", "ζ"}, SymbolEntry{"eta", "η"}, SymbolEntry{"theta", "θ"},
		SymbolEntry{"iota", "ι"}, SymbolEntry{"kappa", "κ"}, SymbolEntry{"lambda", "λ"},
		SymbolEntry{"mu", "μ"}, SymbolEntry{"nu", "ν"}, SymbolEntry{"xi", "ξ"},
		SymbolEntry{"pi", "π"}, SymbolEntry{"rho", "ρ"}, SymbolEntry{"sigma", "σ"},
		SymbolEntry{"tau", "τ"}, SymbolEntry{"upsilon", "υ"}, SymbolEntry{"phi", "φ"},
		SymbolEntry{"varphi", "φ"}, SymbolEntry{"chi", "χ"}, SymbolEntry{"psi", "ψ"},
		SymbolEntry{"omega", "ω"},
		SymbolEntry{"Alpha", "Α"}, SymbolEntry{"Beta", "Β"}, SymbolEntry{"Gamma", "Γ"},
		SymbolEntry{"Delta", "Δ"}, SymbolEntry{"Theta", "Θ"}, SymbolEntry{"Lambda", "Λ"},
		SymbolEntry{"Xi", "Ξ"}, SymbolEntry{"Pi", "Π"}, SymbolEntry{"Sigma", "Σ"},
		SymbolEntry{"Phi", "Φ"}, SymbolEntry{"Psi", "Ψ"}, SymbolEntry{"Omega", "Ω"},
	)
}

// MathSymbols returns the operator, relation, set and arrow table.
func MathSymbols() SymbolTable {
	return NewSymbolTable(
		SymbolEntry{"infty", "∞"}, SymbolEntry{"partial", "∂"}, SymbolEntry{"nabla", "∇"},
		SymbolEntry{"cdot", "·"}, SymbolEntry{"times", "×"}, SymbolEntry{"div", "÷"},
		SymbolEntry{"pm", "±"}, SymbolEntry{"mp", "∓"},
		SymbolEntry{"leq", "≤"}, SymbolEntry{"le", "≤"}, SymbolEntry{"geq", "≥"}, SymbolEntry{"ge", "≥"},
		SymbolEntry{"neq", "≠"}, SymbolEntry{"ne", "≠"}, SymbolEntry{"approx", "≈"},
		SymbolEntry{"sim", "∼"}, SymbolEntry{"equiv", "≡"}, SymbolEntry{"propto", "∝"},
		SymbolEntry{"cap", "∩"}, SymbolEntry{"cup", "∪"},
		SymbolEntry{"subset", "⊂"}, SymbolEntry{"supset", "⊃"},
		SymbolEntry{"subseteq", "⊆"}, SymbolEntry{"supseteq", "⊇"},
		SymbolEntry{"in", "∈"}, SymbolEntry{"notin", "∉"}, SymbolEntry{"emptyset", "∅"},
		SymbolEntry{"forall", "∀"}, SymbolEntry{"exists", "∃"}, SymbolEntry{"neg", "¬"},
		SymbolEntry{"wedge", "∧"}, SymbolEntry{"vee", "∨"},
		SymbolEntry{"therefore", "∴"}, SymbolEntry{"because", "∵"},
		SymbolEntry{"lvert", "|"}, SymbolEntry{"rvert", "|"}, SymbolEntry{"mid", "|"},
		SymbolEntry{"ldots", "…"},
		SymbolEntry{"leftarrow", "←"}, SymbolEntry{"rightarrow", "→"},
		SymbolEntry{"Leftarrow", "⇐"}, SymbolEntry{"Rightarrow", "⇒"},
		SymbolEntry{"Leftrightarrow", "⇔"}, SymbolEntry{"iff", "⇔"},
		SymbolEntry{"percent", "%"},
		// Structural macros are listed so the table documents them; their
		// rendering belongs to later stages.
		SymbolEntry{"sqrt", ""}, SymbolEntry{"frac", ""},
	)
}
