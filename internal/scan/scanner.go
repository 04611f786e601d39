package scan

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/internal/transform"
	"github.com/goliatone/go-texmark/pkg/interfaces"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultFormulaBoxClass marks elements whose whole text is one display formula.
const DefaultFormulaBoxClass = "formula-box"

// DefaultSkipTags lists elements whose text is never scanned.
func DefaultSkipTags() []string {
	return []string{"script", "style", "code"}
}

// Scanner finds delimited math in an HTML subtree and replaces it in place.
// It keeps no per-scan state; scans over disjoint subtrees may run concurrently.
type Scanner struct {
	renderer        interfaces.MathRenderer
	delimiters      []interfaces.DelimiterSpec
	skipTags        []string
	skipClasses     []string
	formulaBoxClass string
	logger          interfaces.Logger
	metrics         interfaces.MathMetrics
}

var _ interfaces.MathScanner = (*Scanner)(nil)

// Option customises scanner behaviour.
type Option func(*Scanner)

// WithRenderer sets the markup renderer.
func WithRenderer(renderer interfaces.MathRenderer) Option {
	return func(s *Scanner) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithDelimiters replaces the ordered delimiter set.
func WithDelimiters(delimiters []interfaces.DelimiterSpec) Option {
	return func(s *Scanner) {
		if len(delimiters) > 0 {
			s.delimiters = append([]interfaces.DelimiterSpec(nil), delimiters...)
		}
	}
}

// WithSkipTags replaces the list of elements whose text is never scanned.
func WithSkipTags(tags ...string) Option {
	return func(s *Scanner) {
		s.skipTags = append([]string(nil), tags...)
	}
}

// WithSkipClasses adds class names whose elements are never scanned.
func WithSkipClasses(classes ...string) Option {
	return func(s *Scanner) {
		s.skipClasses = append(s.skipClasses, classes...)
	}
}

// WithFormulaBoxClass sets the formula box marker class. An empty value
// disables formula boxes.
func WithFormulaBoxClass(class string) Option {
	return func(s *Scanner) {
		s.formulaBoxClass = strings.TrimSpace(class)
	}
}

// WithLogger sets the scanner logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics interfaces.MathMetrics) Option {
	return func(s *Scanner) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// New builds a Scanner using the default transformer and delimiters unless
// overridden.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		renderer:        transform.Default(),
		delimiters:      DefaultDelimiters(),
		skipTags:        DefaultSkipTags(),
		formulaBoxClass: DefaultFormulaBoxClass,
		logger:          logging.NoOp(),
		metrics:         NoOpMetrics(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Delimiters returns a copy of the configured delimiter set.
func (s *Scanner) Delimiters() []interfaces.DelimiterSpec {
	return append([]interfaces.DelimiterSpec(nil), s.delimiters...)
}

// Scan renders formula boxes, then discovers and replaces delimited regions
// under root.
func (s *Scanner) Scan(ctx context.Context, root *html.Node) interfaces.ScanResult {
	return s.scan(ctx, root, "")
}

// ScanScoped renders delimited regions only beneath elements carrying
// scopeClass. Formula boxes are not rendered.
func (s *Scanner) ScanScoped(ctx context.Context, root *html.Node, scopeClass string) interfaces.ScanResult {
	scopeClass = strings.TrimSpace(scopeClass)
	if scopeClass == "" {
		return interfaces.ScanResult{}
	}
	return s.scan(ctx, root, scopeClass)
}

func (s *Scanner) scan(ctx context.Context, root *html.Node, scopeClass string) interfaces.ScanResult {
	if root == nil {
		return interfaces.ScanResult{}
	}
	logger := logging.WithDelimiterContext(logging.Bind(s.logger, ctx), s.delimiters, scopeClass)
	start := time.Now()

	boxes := 0
	if scopeClass == "" {
		boxes = s.renderFormulaBoxes(root)
	}

	opts := s.discoverOptions()
	opts.ScopeClass = scopeClass
	plan := Discover(root, s.delimiters, opts)
	logger.Debug("scan.discover.completed", "nodes", len(plan))

	result := Apply(plan, s.delimiters, s.renderer)
	result.FormulaBoxes = boxes

	elapsed := time.Since(start)
	s.metrics.ObserveScanDuration(elapsed)
	s.metrics.IncrementRegions(true, result.DisplayRegions+boxes)
	s.metrics.IncrementRegions(false, result.InlineRegions)
	if result.Unterminated > 0 {
		s.metrics.IncrementUnterminated(result.Unterminated)
		logger.Warn("scan.apply.unterminated", "markers", result.Unterminated)
	}
	logger.Debug("scan.apply.completed", append(logging.ScanResultArgs(result), "duration", elapsed)...)
	return result
}

// ScanFragment parses markup as body content, scans it and renders it back.
func (s *Scanner) ScanFragment(ctx context.Context, markup string) (string, interfaces.ScanResult, error) {
	return s.scanFragment(ctx, markup, s.Scan)
}

// ScanFragmentScoped is ScanFragment limited to regions beneath elements
// carrying scopeClass.
func (s *Scanner) ScanFragmentScoped(ctx context.Context, markup, scopeClass string) (string, interfaces.ScanResult, error) {
	return s.scanFragment(ctx, markup, func(ctx context.Context, root *html.Node) interfaces.ScanResult {
		return s.ScanScoped(ctx, root, scopeClass)
	})
}

func (s *Scanner) scanFragment(ctx context.Context, markup string, scan func(context.Context, *html.Node) interfaces.ScanResult) (string, interfaces.ScanResult, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", interfaces.ScanResult{}, err
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		body.AppendChild(n)
	}

	result := scan(ctx, body)
	if !result.Changed() {
		return markup, result, nil
	}
	out, err := RenderChildren(body)
	if err != nil {
		return "", result, err
	}
	return out, result, nil
}

// ScanDocument parses a full HTML document from r and scans its body. The
// parsed document is returned so callers can render it.
func (s *Scanner) ScanDocument(ctx context.Context, r io.Reader) (*html.Node, interfaces.ScanResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, interfaces.ScanResult{}, err
	}
	root := FindElement(doc, atom.Body)
	if root == nil {
		root = doc
	}
	return doc, s.Scan(ctx, root), nil
}

func (s *Scanner) discoverOptions() DiscoverOptions {
	classes := append([]string(nil), s.skipClasses...)
	if s.formulaBoxClass != "" {
		classes = append(classes, s.formulaBoxClass)
	}
	return DiscoverOptions{SkipTags: s.skipTags, SkipClasses: classes}
}

// renderFormulaBoxes replaces the content of every formula box with a display
// wrapper. Boxes already holding a rendered wrapper are left alone.
func (s *Scanner) renderFormulaBoxes(root *html.Node) int {
	if s.formulaBoxClass == "" {
		return 0
	}
	skipTags := toSet(s.skipTags, strings.ToLower)
	skipClasses := toSet(s.skipClasses, nil)
	skipClasses[RenderedClass] = struct{}{}

	var boxes []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if HasClass(n, s.formulaBoxClass) {
				boxes = append(boxes, n)
				return
			}
			if skipElement(n, skipTags, skipClasses) {
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	rendered := 0
	for _, box := range boxes {
		if containsRendered(box) {
			continue
		}
		formula := boxFormula(TextContent(box))
		if formula == "" {
			continue
		}
		for child := box.FirstChild; child != nil; child = box.FirstChild {
			box.RemoveChild(child)
		}
		box.AppendChild(Wrap(s.renderer.Render(formula, true), true))
		rendered++
	}
	return rendered
}

func boxFormula(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "$$")
	text = strings.TrimSuffix(text, "$$")
	return strings.TrimSpace(text)
}

func containsRendered(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if HasClass(child, RenderedClass) || containsRendered(child) {
			return true
		}
	}
	return false
}

// TextContent concatenates the text nodes under n in document order.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// FindElement returns the first element under n with the given atom.
func FindElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := FindElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// RenderChildren serialises the children of n.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
