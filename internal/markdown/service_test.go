package markdown

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

func TestServiceLoad(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "euler.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(doc.Checksum) == 0 {
		t.Fatalf("expected checksum to be populated")
	}
	if doc.FrontMatter.Slug == "" || strings.Contains(doc.FrontMatter.Slug, " ") {
		t.Fatalf("expected derived slug, got %q", doc.FrontMatter.Slug)
	}

	html := string(doc.BodyHTML)
	if !strings.Contains(html, `<span class="katex katex-inline">e<sup class="katex-superscript">2</sup></span>`) {
		t.Fatalf("expected inline math to be rendered, got %s", html)
	}
	if !strings.Contains(html, `<span class="katex katex-display">`) || !strings.Contains(html, `katex-fraction`) {
		t.Fatalf("expected display math to be rendered, got %s", html)
	}
	if strings.Contains(html, "$") {
		t.Fatalf("expected no leftover delimiters, got %s", html)
	}
}

func TestServiceLoad_FrontMatterDisablesMath(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "plain.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	html := string(doc.BodyHTML)
	if strings.Contains(html, "katex") || !strings.Contains(html, "$3 and pears cost $4.") {
		t.Fatalf("expected prices to stay literal, got %s", html)
	}
}

func TestServiceLoad_OptionsOverrideFrontMatter(t *testing.T) {
	svc := newTestService(t, true)

	on := true
	doc, err := svc.Load(context.Background(), "plain.md", interfaces.LoadOptions{
		Parser: interfaces.ParseOptions{Math: &on},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	html := string(doc.BodyHTML)
	if !strings.Contains(html, `<span class="katex katex-inline">p<sub class="katex-subscript">i</sub></span>`) {
		t.Fatalf("expected explicit option to win over front matter, got %s", html)
	}
	if !strings.Contains(html, "Apples cost $3 and pears cost $4.") {
		t.Fatalf("expected prices to stay literal with math enabled, got %s", html)
	}
}

func TestServiceRender_PricesStayLiteralWithMathEnabled(t *testing.T) {
	svc := newTestService(t, true)

	html, err := svc.Render(context.Background(), []byte("Costs $5 and $6, but $x$ is math.\n"), interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<p>Costs $5 and $6, but <span class=\"math\"><span class=\"katex katex-inline\">x</span></span> is math.</p>\n"
	if string(html) != want {
		t.Fatalf("unexpected output:\n got: %q\nwant: %q", html, want)
	}
}

func TestServiceLoad_MissingFile(t *testing.T) {
	svc := newTestService(t, true)

	_, err := svc.Load(context.Background(), "missing.md", interfaces.LoadOptions{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newTestService(t, true)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	want := []string{"euler.md", "notes/series.md", "plain.md"}
	if len(docs) != len(want) {
		t.Fatalf("expected %d documents, got %d", len(want), len(docs))
	}
	for i, doc := range docs {
		if doc.FilePath != want[i] {
			t.Fatalf("document %d: expected %s, got %s", i, want[i], doc.FilePath)
		}
		if filepath.Ext(doc.FilePath) != ".md" {
			t.Fatalf("expected markdown file, got %s", doc.FilePath)
		}
		if len(doc.BodyHTML) == 0 {
			t.Fatalf("expected BodyHTML for %s", doc.FilePath)
		}
	}

	series := string(docs[1].BodyHTML)
	if !strings.Contains(series, `katex-display`) || !strings.Contains(series, "∑") {
		t.Fatalf("expected math fence to render as display math, got %s", series)
	}
}

func TestServiceLoadDirectory_NonRecursiveOverride(t *testing.T) {
	svc := newTestService(t, true)

	no := false
	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{
		Recursive: &no,
	})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	for _, doc := range docs {
		if strings.Contains(doc.FilePath, "/") {
			t.Fatalf("expected only root documents, got %s", doc.FilePath)
		}
	}
}

func TestServiceRender_WithoutScannerKeepsDelimiters(t *testing.T) {
	svc, err := NewService(Config{BasePath: filepath.Join("testdata", "site")}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	html, err := svc.Render(context.Background(), []byte("$x_1$"), interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(html) != "<p><span class=\"math\">$x_1$</span></p>\n" {
		t.Fatalf("unexpected output %q", html)
	}
}

func TestServiceRender_CancelledContext(t *testing.T) {
	svc := newTestService(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Render(ctx, []byte("$x$"), interfaces.ParseOptions{}); err == nil {
		t.Fatalf("expected cancelled context to abort rendering")
	}
}

func TestServiceRenderDocument_NilDocument(t *testing.T) {
	svc := newTestService(t, true)

	_, err := svc.RenderDocument(context.Background(), nil, interfaces.ParseOptions{})
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input category, got %v", err)
	}
}

func TestNewService_MissingBasePath(t *testing.T) {
	_, err := NewService(Config{BasePath: filepath.Join(t.TempDir(), "missing")}, nil)
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		doc  *interfaces.Document
		want string
	}{
		{
			doc:  &interfaces.Document{FilePath: "notes/series.md", FrontMatter: interfaces.FrontMatter{Slug: "sums"}},
			want: filepath.Join("notes", "sums.html"),
		},
		{
			doc:  &interfaces.Document{FilePath: "plain.md", FrontMatter: interfaces.FrontMatter{Title: "Prices"}},
			want: "prices.html",
		},
		{
			doc:  &interfaces.Document{FilePath: "limits.md"},
			want: "limits.html",
		},
	}
	for _, tc := range cases {
		if got := OutputName(tc.doc); got != tc.want {
			t.Fatalf("OutputName(%s) = %q, want %q", tc.doc.FilePath, got, tc.want)
		}
	}
	if OutputName(nil) != "" {
		t.Fatalf("expected empty name for nil document")
	}
}

func newTestService(tb testing.TB, recursive bool) *Service {
	tb.Helper()

	baseCfg := Config{
		BasePath:  filepath.Join("testdata", "site"),
		Pattern:   "*.md",
		Recursive: recursive,
	}

	svc, err := NewService(baseCfg, nil, WithScanner(scan.New()))
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}
