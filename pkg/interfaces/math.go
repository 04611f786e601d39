package interfaces

import (
	"context"
	"time"

	"golang.org/x/net/html"
)

// DelimiterSpec describes one class of math region embedded in text. Left and
// Right are the literal markers bounding the region; Display selects block
// (true) or inline (false) presentation of the rendered output.
type DelimiterSpec struct {
	Left    string `json:"left" yaml:"left"`
	Right   string `json:"right" yaml:"right"`
	Display bool   `json:"display" yaml:"display"`
}

// MathRenderer converts restricted LaTeX-like markup into nested HTML
// wrappers. Implementations never fail: anything they do not recognise is
// returned as literal text.
type MathRenderer interface {
	Render(markup string, display bool) string
}

// MathScanner locates delimited math regions inside an HTML subtree and
// replaces them with rendered output in place.
type MathScanner interface {
	Scan(ctx context.Context, root *html.Node) ScanResult
}

// ScanResult summarises a single scan invocation.
type ScanResult struct {
	// Nodes counts the text nodes selected for replacement.
	Nodes int
	// DisplayRegions and InlineRegions count rendered regions per class.
	DisplayRegions int
	InlineRegions  int
	// Unterminated counts opening markers restored as literal text.
	Unterminated int
	// FormulaBoxes counts whole-element formula boxes rendered.
	FormulaBoxes int
}

// Regions returns the total number of rendered regions.
func (r ScanResult) Regions() int {
	return r.DisplayRegions + r.InlineRegions
}

// Changed reports whether the scan mutated the subtree.
func (r ScanResult) Changed() bool {
	return r.Nodes > 0 || r.FormulaBoxes > 0
}

// MathMetrics records scan telemetry. Implementations must be safe for
// concurrent use.
type MathMetrics interface {
	ObserveScanDuration(duration time.Duration)
	IncrementRegions(display bool, count int)
	IncrementUnterminated(count int)
}
