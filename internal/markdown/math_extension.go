package markdown

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMathInline and KindMathBlock identify math nodes in the goldmark AST.
var (
	KindMathInline = ast.NewNodeKind("MathInline")
	KindMathBlock  = ast.NewNodeKind("MathBlock")
)

// MathInline is a `$…$` or `$$…$$` region found inside a paragraph.
type MathInline struct {
	ast.BaseInline
	Segment text.Segment
	Display bool
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": strconv.FormatBool(n.Display),
		"Value":   string(n.Segment.Value(source)),
	}, nil)
}

// MathBlock is a display formula written between `$$` fence lines or inside a
// ```math fenced code block.
type MathBlock struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// IsRaw implements ast.Node.
func (n *MathBlock) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// MathScopeClass marks the elements holding passed-through math. Only text
// beneath them is scanned for delimiters.
const MathScopeClass = "math"

// MathPassthrough keeps math regions away from Markdown inline processing.
// Regions are emitted inside MathScopeClass elements with their delimiters and
// HTML-escaped content so the math scanner renders them once the page is HTML.
var MathPassthrough goldmark.Extender = &mathExtension{}

type mathExtension struct{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 150)),
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 650)),
		parser.WithASTTransformers(util.Prioritized(&mathFenceTransformer{}, 100)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathHTMLRenderer{}, 100)),
	)
}

type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse matches a region on the current line. An opener without a closer
// yields nil so the dollar signs stay literal text.
func (p *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	opener := 1
	if len(line) > 1 && line[1] == '$' {
		opener = 2
	}
	marker := line[:opener]
	rest := line[opener:]

	closer := bytes.Index(rest, marker)
	if closer <= 0 {
		return nil
	}
	if opener == 1 && (util.IsSpace(rest[0]) || util.IsSpace(rest[closer-1])) {
		return nil
	}

	node := &MathInline{
		Segment: text.NewSegment(segment.Start+opener, segment.Start+opener+closer),
		Display: opener == 2,
	}
	block.Advance(opener + closer + opener)
	return node
}

type mathBlockParser struct{}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !isMathFence(line[pos:]) {
		return nil, parser.NoChildren
	}
	return &MathBlock{}, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	if w, pos := util.IndentWidth(line, reader.LineOffset()); w < 4 && isMathFence(line[pos:]) {
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
		return parser.Close
	}

	node.Lines().Append(segment)
	reader.AdvanceAndSetPadding(segment.Stop-segment.Start-1, segment.Padding)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool { return true }

func (p *mathBlockParser) CanAcceptIndentedLine() bool { return false }

func isMathFence(line []byte) bool {
	return bytes.Equal(util.TrimRightSpace(util.TrimLeftSpace(line)), []byte("$$"))
}

// mathFenceTransformer turns ```math fenced code blocks into math blocks.
type mathFenceTransformer struct{}

func (t *mathFenceTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if ok && string(fence.Language(source)) == "math" {
			fences = append(fences, fence)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, fence := range fences {
		block := &MathBlock{}
		block.SetLines(fence.Lines())
		if parent := fence.Parent(); parent != nil {
			parent.ReplaceChild(parent, fence, block)
		}
	}
}

type mathHTMLRenderer struct{}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathInline, r.renderInline)
	reg.Register(KindMathBlock, r.renderBlock)
}

func (r *mathHTMLRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathInline)
	marker := "$"
	if n.Display {
		marker = "$$"
	}
	_, _ = w.WriteString(`<span class="` + MathScopeClass + `">` + marker)
	_, _ = w.Write(util.EscapeHTML(n.Segment.Value(source)))
	_, _ = w.WriteString(marker + `</span>`)
	return ast.WalkSkipChildren, nil
}

func (r *mathHTMLRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="` + MathScopeClass + ` math-block">$$`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("$$</div>\n")
	return ast.WalkSkipChildren, nil
}
