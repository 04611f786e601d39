package rendercmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-texmark/internal/convert"
	"github.com/goliatone/go-texmark/internal/markdown"
	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/internal/transform"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newServices(t *testing.T, base string) Services {
	t.Helper()
	scanner := scan.New()
	svc, err := markdown.NewService(markdown.Config{BasePath: base, Recursive: true}, nil, markdown.WithScanner(scanner))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return Services{
		Renderer:  transform.Default(),
		Converter: convert.New(convert.Config{Recursive: true, OutputSuffix: ".rendered"}, scanner),
		Markdown:  svc,
	}
}

func TestRegisterRenderCommands(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterRenderCommands(reg, newServices(t, t.TempDir()), nil)
	if err != nil {
		t.Fatalf("RegisterRenderCommands: %v", err)
	}
	if len(reg.handlers) != 4 {
		t.Fatalf("expected 4 handlers registered, got %d", len(reg.handlers))
	}
	if set.Formula == nil || set.File == nil || set.Directory == nil || set.Page == nil {
		t.Fatalf("expected full handler set, got %+v", set)
	}
}

func TestRegisterRenderCommandsPartialServices(t *testing.T) {
	set, err := RegisterRenderCommands(nil, Services{Renderer: transform.Default()}, nil)
	if err != nil {
		t.Fatalf("RegisterRenderCommands: %v", err)
	}
	if len(set.Handlers()) != 1 || set.Page != nil {
		t.Fatalf("expected only the formula handler, got %+v", set)
	}

	if _, err := RegisterRenderCommands(nil, Services{}, nil); err == nil {
		t.Fatal("expected error without services")
	}
}

func TestRenderFormulaHandler(t *testing.T) {
	var got ResultEnvelope
	h := NewRenderFormulaHandler(transform.Default(), nil)

	err := h.Execute(context.Background(), RenderFormulaCommand{
		Markup:         `\frac{1}{2}`,
		ResultCallback: func(env ResultEnvelope) { got = env },
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := `<span class="katex-fraction"><span class="katex-numerator">1</span><span class="katex-denominator">2</span></span>`
	if got.HTML != want {
		t.Fatalf("unexpected html %q", got.HTML)
	}
}

func TestRenderFormulaHandlerRejectsInvalidMessage(t *testing.T) {
	h := NewRenderFormulaHandler(transform.Default(), nil)
	err := h.Execute(context.Background(), RenderFormulaCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestConvertHandlers(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	writeFile(t, page, `<html><body><p>$x^2$</p></body></html>`)
	services := newServices(t, dir)

	var file ResultEnvelope
	err := NewConvertFileHandler(services.Converter, nil).Execute(context.Background(), ConvertFileCommand{
		Path:           page,
		ResultCallback: func(env ResultEnvelope) { file = env },
	})
	if err != nil {
		t.Fatalf("convert file: %v", err)
	}
	if file.File == nil || !file.File.Changed || file.Output != filepath.Join(dir, "page.rendered.html") {
		t.Fatalf("unexpected file result %+v", file)
	}

	var dirResult ResultEnvelope
	err = NewConvertDirectoryHandler(services.Converter, nil).Execute(context.Background(), ConvertDirectoryCommand{
		Directory:      dir,
		DryRun:         true,
		ResultCallback: func(env ResultEnvelope) { dirResult = env },
	})
	if err != nil {
		t.Fatalf("convert directory: %v", err)
	}
	if dirResult.Report == nil || dirResult.Report.Converted != 1 || len(dirResult.Report.Files) != 1 {
		t.Fatalf("unexpected report %+v", dirResult.Report)
	}
}

func TestConvertFileHandlerPropagatesNotFound(t *testing.T) {
	services := newServices(t, t.TempDir())
	err := NewConvertFileHandler(services.Converter, nil).Execute(context.Background(), ConvertFileCommand{
		Path: filepath.Join(t.TempDir(), "missing.html"),
	})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestRenderPageHandler(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "notes.md"), "---\ntitle: Limits & Sums\n---\nWe have $\\sum_{i=1}^{n} i$.\n")
	out := filepath.Join(t.TempDir(), "public")
	services := newServices(t, base)

	var got ResultEnvelope
	err := NewRenderPageHandler(services.Markdown, nil).Execute(context.Background(), RenderPageCommand{
		Path:           "notes.md",
		OutputDir:      out,
		ResultCallback: func(env ResultEnvelope) { got = env },
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if filepath.Dir(got.Output) != out || filepath.Ext(got.Output) != ".html" {
		t.Fatalf("unexpected output path %q", got.Output)
	}
	written, err := os.ReadFile(got.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	page := string(written)
	if !strings.Contains(page, "<title>Limits &amp; Sums</title>") {
		t.Fatalf("expected escaped title, got %s", page)
	}
	if !strings.Contains(page, "katex katex-inline") || !strings.Contains(page, "∑") {
		t.Fatalf("expected rendered math, got %s", page)
	}
}

func TestRenderPageHandlerDryRunAndMathOverride(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "prices.md"), "Costs $3 and $4.\n")
	services := newServices(t, base)

	off := false
	var got ResultEnvelope
	err := NewRenderPageHandler(services.Markdown, nil).Execute(context.Background(), RenderPageCommand{
		Path:           "prices.md",
		Math:           &off,
		DryRun:         true,
		ResultCallback: func(env ResultEnvelope) { got = env },
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if got.Output != "" {
		t.Fatalf("expected dry run not to write, got %q", got.Output)
	}
	if strings.Contains(got.HTML, "katex") || !strings.Contains(got.HTML, "Costs $3 and $4.") {
		t.Fatalf("expected math to stay disabled, got %s", got.HTML)
	}
}

func TestRenderPageHandlerKeepsPricesLiteralWithMathEnabled(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "prices.md"), "Costs $3 and $4, total $t_0$.\n")
	services := newServices(t, base)

	var got ResultEnvelope
	err := NewRenderPageHandler(services.Markdown, nil).Execute(context.Background(), RenderPageCommand{
		Path:           "prices.md",
		DryRun:         true,
		ResultCallback: func(env ResultEnvelope) { got = env },
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(got.HTML, "Costs $3 and $4, total ") {
		t.Fatalf("expected prices to stay literal, got %s", got.HTML)
	}
	if strings.Count(got.HTML, "katex katex-inline") != 1 {
		t.Fatalf("expected one rendered region, got %s", got.HTML)
	}
}

func TestPageHTMLRequiresDocument(t *testing.T) {
	if _, err := PageHTML(nil); !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input category, got %v", err)
	}
	page, err := PageHTML(&interfaces.Document{BodyHTML: []byte("<p>x</p>\n")})
	if err != nil || !strings.Contains(page, "<body>\n<p>x</p>\n</body>") {
		t.Fatalf("unexpected page %q (%v)", page, err)
	}
}
