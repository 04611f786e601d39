package texmark_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-texmark"
)

func parseBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return body
}

func TestRenderNestsFractionAndRoot(t *testing.T) {
	got := texmark.Render(`\frac{\sqrt{4}}{2}`)
	want := `<span class="katex-fraction"><span class="katex-numerator"><span class="katex-sqrt"><span class="katex-sqrt-root">4</span></span></span><span class="katex-denominator">2</span></span>`
	if got != want {
		t.Fatalf("unexpected output:\n got: %s\nwant: %s", got, want)
	}
}

func TestRenderDisplayMarksBigOperators(t *testing.T) {
	got := texmark.RenderDisplay(`\sum_{i=1}^{n} i`)
	if !strings.Contains(got, "katex-op-display") || !strings.Contains(got, "∑<sub>i=1</sub><sup>n</sup>") {
		t.Fatalf("unexpected display output %s", got)
	}
	if strings.Contains(texmark.Render(`\sum_{i=1}^{n} i`), "katex-op-display") {
		t.Fatalf("inline rendering must not carry the display class")
	}
}

func TestRenderLeavesUnknownMacros(t *testing.T) {
	if got := texmark.Render(`\alphabet`); got != `\alphabet` {
		t.Fatalf("expected unknown macro to stay literal, got %s", got)
	}
}

func TestScanAndScanWith(t *testing.T) {
	body := parseBody(t, `<p>$a$ and \(b\)</p>`)
	result := texmark.Scan(context.Background(), body)
	if result.InlineRegions != 1 {
		t.Fatalf("expected one default region, got %+v", result)
	}

	result = texmark.ScanWith(context.Background(), body, []texmark.DelimiterSpec{{Left: `\(`, Right: `\)`}})
	if result.InlineRegions != 1 {
		t.Fatalf("expected one custom region, got %+v", result)
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := texmark.RenderHTML(context.Background(), `<p>plain</p>`)
	if err != nil || out != `<p>plain</p>` {
		t.Fatalf("expected passthrough, got %q (%v)", out, err)
	}

	out, err = texmark.RenderHTML(context.Background(), `<p>$$\alpha$$</p>`)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if want := `<p><span class="katex katex-display"><span class="katex-symbol">α</span></span></p>`; out != want {
		t.Fatalf("unexpected output:\n got: %s\nwant: %s", out, want)
	}
}

func TestDefaultDelimiters(t *testing.T) {
	delims := texmark.DefaultDelimiters()
	if len(delims) != 2 || delims[0].Left != "$$" || !delims[0].Display || delims[1].Left != "$" || delims[1].Display {
		t.Fatalf("unexpected default delimiters %+v", delims)
	}
}

func TestModuleConvert(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(`<html><body><p>$x$</p></body></html>`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	module, err := texmark.NewModule(texmark.DefaultConfig(), texmark.WithMarkdownBasePath(dir))
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	report, err := module.Convert(context.Background(), dir, texmark.ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if report.Converted != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := os.Stat(texmark.ConvertOutputPath(path, ".rendered", false)); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}
