package scan

import (
	"strings"

	"github.com/goliatone/go-texmark/pkg/interfaces"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	displayClass = RenderedClass + " katex-display"
	inlineClass  = RenderedClass + " katex-inline"
)

// Apply replaces every planned text node with the spliced sequence of plain
// text and rendered wrappers. It is the only step that mutates the tree.
// Nodes that lost their parent since discovery, or that yield no rendered
// region, are left as they are.
func Apply(plan Plan, delimiters []interfaces.DelimiterSpec, renderer interfaces.MathRenderer) interfaces.ScanResult {
	var result interfaces.ScanResult
	for _, entry := range plan {
		node := entry.Node
		if node == nil || node.Parent == nil || node.Type != html.TextNode {
			continue
		}

		s := splicer{renderer: renderer}
		replacement := s.splice(node.Data, specsFrom(entry.Delimiter, delimiters))
		result.Unterminated += s.unterminated
		if s.display+s.inline == 0 {
			continue
		}

		parent := node.Parent
		for _, n := range replacement {
			parent.InsertBefore(n, node)
		}
		parent.RemoveChild(node)

		result.Nodes++
		result.DisplayRegions += s.display
		result.InlineRegions += s.inline
	}
	return result
}

// specsFrom returns the chosen spec followed by every spec declared after it.
func specsFrom(chosen interfaces.DelimiterSpec, delimiters []interfaces.DelimiterSpec) []interfaces.DelimiterSpec {
	for i, spec := range delimiters {
		if spec == chosen {
			return delimiters[i:]
		}
	}
	return []interfaces.DelimiterSpec{chosen}
}

type splicer struct {
	renderer     interfaces.MathRenderer
	display      int
	inline       int
	unterminated int
}

// splice splits text on specs[0] and returns the replacement sequence. Plain
// runs are spliced again with the remaining specs. A marker without a closer
// is restored as literal text and never spliced again.
func (s *splicer) splice(text string, specs []interfaces.DelimiterSpec) []*html.Node {
	spec, rest := specs[0], specs[1:]
	parts := strings.Split(text, spec.Left)

	var out []*html.Node
	plain := parts[0]
	flush := func() {
		if plain != "" {
			out = append(out, s.plainRun(plain, rest)...)
		}
		plain = ""
	}
	literal := func(text string) {
		flush()
		out = append(out, &html.Node{Type: html.TextNode, Data: text})
		s.unterminated++
	}

	if spec.Left == spec.Right {
		// The split already consumed the closers: part i is content only when
		// part i+1 exists, and part i+1 is the text after it.
		for i := 1; i < len(parts); {
			if i+1 < len(parts) {
				flush()
				out = append(out, s.region(parts[i], spec))
				plain = parts[i+1]
				i += 2
				continue
			}
			literal(spec.Left + parts[i])
			i++
		}
	} else {
		for _, part := range parts[1:] {
			end := strings.Index(part, spec.Right)
			if end < 0 {
				literal(spec.Left + part)
				continue
			}
			flush()
			out = append(out, s.region(part[:end], spec))
			plain = part[end+len(spec.Right):]
		}
	}
	flush()
	return mergeText(out)
}

// mergeText joins adjacent text nodes.
func mergeText(nodes []*html.Node) []*html.Node {
	merged := nodes[:0]
	for _, n := range nodes {
		if last := len(merged) - 1; last >= 0 && n.Type == html.TextNode && merged[last].Type == html.TextNode {
			merged[last].Data += n.Data
			continue
		}
		merged = append(merged, n)
	}
	return merged
}

func (s *splicer) plainRun(text string, specs []interfaces.DelimiterSpec) []*html.Node {
	if rank, ok := selectDelimiter(text, specs); ok {
		return s.splice(text, specs[rank:])
	}
	return []*html.Node{{Type: html.TextNode, Data: text}}
}

func (s *splicer) region(content string, spec interfaces.DelimiterSpec) *html.Node {
	if spec.Display {
		s.display++
	} else {
		s.inline++
	}
	rendered := content
	if s.renderer != nil {
		rendered = s.renderer.Render(content, spec.Display)
	}
	return Wrap(rendered, spec.Display)
}

// Wrap builds the rendered wrapper element holding the parsed fragment. When
// the fragment cannot be parsed it is kept as a single text child.
func Wrap(rendered string, display bool) *html.Node {
	class := inlineClass
	if display {
		class = displayClass
	}
	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}

	children, err := html.ParseFragment(strings.NewReader(rendered), wrapper)
	if err != nil {
		wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: rendered})
		return wrapper
	}
	for _, child := range children {
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		wrapper.AppendChild(child)
	}
	return wrapper
}
