package transform

import (
	"strings"
	"sync"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// Transformer renders restricted LaTeX-like markup into nested HTML wrappers.
// It is immutable after construction and safe for concurrent use.
type Transformer struct {
	tables  Tables
	inline  []Stage
	display []Stage
}

var _ interfaces.MathRenderer = (*Transformer)(nil)

// Option customises transformer construction.
type Option func(*Transformer)

// WithTables replaces the symbol tables used by the symbols stage.
func WithTables(tables Tables) Option {
	return func(t *Transformer) {
		t.tables = tables
	}
}

// New builds a Transformer with the default tables unless overridden.
func New(opts ...Option) *Transformer {
	t := &Transformer{tables: DefaultTables()}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.inline = buildStages(t.tables, false)
	t.display = buildStages(t.tables, true)
	return t
}

// Default returns the shared transformer built with the default tables.
var Default = sync.OnceValue(func() *Transformer {
	return New()
})

// Render converts markup into HTML. One paired layer of $$ or $ delimiters is
// stripped first. Unrecognised constructs are passed through as text.
func (t *Transformer) Render(markup string, display bool) string {
	stages := t.inline
	if display {
		stages = t.display
	}
	out := StripDelimiters(markup)
	for _, stage := range stages {
		out = stage.Apply(out)
	}
	return out
}

// RenderStage applies a single named stage to markup. It returns the input
// unchanged when the stage is unknown.
func (t *Transformer) RenderStage(name, markup string, display bool) string {
	stages := t.inline
	if display {
		stages = t.display
	}
	for _, stage := range stages {
		if stage.Name == name {
			return stage.Apply(markup)
		}
	}
	return markup
}

// Stages returns the stage names in execution order.
func (t *Transformer) Stages() []string {
	names := make([]string, len(t.inline))
	for i, stage := range t.inline {
		names[i] = stage.Name
	}
	return names
}

// Tables returns the symbol tables the transformer was built with.
func (t *Transformer) Tables() Tables {
	return t.tables
}

// StripDelimiters removes one paired layer of $$...$$ or $...$ from markup.
// Unpaired markers are left in place.
func StripDelimiters(markup string) string {
	for _, marker := range []string{"$$", "$"} {
		if len(markup) >= 2*len(marker) &&
			strings.HasPrefix(markup, marker) &&
			strings.HasSuffix(markup, marker) {
			return markup[len(marker) : len(markup)-len(marker)]
		}
	}
	return markup
}
