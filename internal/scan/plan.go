package scan

import (
	"strings"

	"github.com/goliatone/go-texmark/pkg/interfaces"
	"golang.org/x/net/html"
)

// RenderedClass marks an element produced by the scanner. Discovery never
// descends into it, which keeps repeated scans idempotent.
const RenderedClass = "katex"

// PlanEntry pairs a text node with the delimiter spec chosen for it.
type PlanEntry struct {
	Node      *html.Node
	Delimiter interfaces.DelimiterSpec
}

// Plan is the ordered list of text nodes selected for replacement.
type Plan []PlanEntry

// DiscoverOptions bounds the traversal.
type DiscoverOptions struct {
	SkipTags    []string
	SkipClasses []string
	// ScopeClass, when set, limits selection to text beneath elements
	// carrying the class.
	ScopeClass string
}

// Discover walks root in document order and selects every text node containing
// both markers of some delimiter spec. It never mutates the tree.
func Discover(root *html.Node, delimiters []interfaces.DelimiterSpec, opts DiscoverOptions) Plan {
	if root == nil || len(delimiters) == 0 {
		return nil
	}
	skipTags := toSet(opts.SkipTags, strings.ToLower)
	skipClasses := toSet(opts.SkipClasses, nil)
	skipClasses[RenderedClass] = struct{}{}

	var plan Plan
	var walk func(n *html.Node, inScope bool)
	walk = func(n *html.Node, inScope bool) {
		if n.Type == html.TextNode {
			if n.Parent == nil || !inScope {
				return
			}
			if rank, ok := selectDelimiter(n.Data, delimiters); ok {
				plan = append(plan, PlanEntry{Node: n, Delimiter: delimiters[rank]})
			}
			return
		}
		if n.Type == html.ElementNode {
			if skipElement(n, skipTags, skipClasses) {
				return
			}
			if !inScope && HasClass(n, opts.ScopeClass) {
				inScope = true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inScope)
		}
	}
	walk(root, opts.ScopeClass == "" || HasClass(root, opts.ScopeClass))
	return plan
}

// selectDelimiter returns the index of the first spec whose markers both
// occur in text.
func selectDelimiter(text string, delimiters []interfaces.DelimiterSpec) (int, bool) {
	for i, spec := range delimiters {
		if spec.Left == "" || spec.Right == "" {
			continue
		}
		if strings.Contains(text, spec.Left) && strings.Contains(text, spec.Right) {
			return i, true
		}
	}
	return -1, false
}

func skipElement(n *html.Node, tags, classes map[string]struct{}) bool {
	if _, ok := tags[strings.ToLower(n.Data)]; ok {
		return true
	}
	return hasAnyClass(n, classes)
}

func hasAnyClass(n *html.Node, classes map[string]struct{}) bool {
	for _, attr := range n.Attr {
		if attr.Namespace != "" || attr.Key != "class" {
			continue
		}
		for _, name := range strings.Fields(attr.Val) {
			if _, ok := classes[name]; ok {
				return true
			}
		}
	}
	return false
}

// HasClass reports whether n carries the class name.
func HasClass(n *html.Node, name string) bool {
	return n != nil && n.Type == html.ElementNode && hasAnyClass(n, map[string]struct{}{name: {}})
}

func toSet(values []string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values)+1)
	for _, value := range values {
		value = strings.TrimSpace(value)
		if normalize != nil {
			value = normalize(value)
		}
		if value != "" {
			set[value] = struct{}{}
		}
	}
	return set
}
