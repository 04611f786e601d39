package markdown

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// FragmentScanner renders math regions found beneath elements carrying a
// scope class inside an HTML fragment.
type FragmentScanner interface {
	ScanFragmentScoped(ctx context.Context, markup, scopeClass string) (string, interfaces.ScanResult, error)
}

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg     Config
	parser  interfaces.MarkdownParser
	scanner FragmentScanner
	loader  *Loader
	logger  interfaces.Logger
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithScanner sets the scanner that renders math after Markdown conversion.
// Without one, math regions are emitted as escaped text with their delimiters.
func WithScanner(scanner FragmentScanner) ServiceOption {
	return func(s *Service) {
		s.scanner = scanner
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Markdown service using an underlying loader. When parser
// is nil, a Goldmark parser with the provided default options is created.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	svc := &Service{
		cfg:    cfg,
		parser: parser,
		loader: loader,
		logger: logging.MarkdownLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Load reads a single Markdown document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path))
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads every Markdown document within the supplied directory.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs = append(docs, result.Document)
	}
	return docs, nil
}

// Render parses Markdown bytes into HTML and, when math is enabled, renders
// the math regions the parser passed through.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := mergeParseOptions(s.cfg.Parser, opts)
	html, err := s.parser.ParseWithOptions(markdown, merged)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "markdown render").
			WithTextCode("MARKDOWN_RENDER_FAILED")
	}
	if !MathEnabled(merged) || s.scanner == nil {
		return html, nil
	}

	out, result, err := s.scanner.ScanFragmentScoped(ctx, string(html), MathScopeClass)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "markdown math scan").
			WithTextCode("MARKDOWN_MATH_FAILED")
	}
	if result.Changed() {
		s.logger.Debug("markdown.math.rendered",
			"display", result.DisplayRegions,
			"inline", result.InlineRegions,
			"unterminated", result.Unterminated,
		)
	}
	return []byte(out), nil
}

// RenderDocument converts the document's Markdown body into HTML. A `math`
// front matter flag applies unless opts sets Math explicitly.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, goerrors.New("markdown service: document is nil", goerrors.CategoryBadInput).
			WithTextCode("MARKDOWN_DOCUMENT_REQUIRED")
	}
	if opts.Math == nil && doc.FrontMatter.Math != nil {
		value := *doc.FrontMatter.Math
		opts.Math = &value
	}

	logger := logging.WithDocumentContext(s.logger, doc.FilePath, "render")
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		logger.Error("markdown.render.failed", "error", err)
		return nil, err
	}
	doc.BodyHTML = html
	logger.Debug("markdown.render.completed", "bytes", len(html))
	return html, nil
}

// OutputName returns the HTML file name for doc: its slug with an .html
// extension, placed in the document's directory.
func OutputName(doc *interfaces.Document) string {
	if doc == nil {
		return ""
	}
	name := doc.FrontMatter.Slug
	if name == "" {
		name = DeriveSlug(doc.FrontMatter.Title, doc.FilePath)
	}
	if name == "" {
		name = "index"
	}
	dir := filepath.Dir(filepath.FromSlash(doc.FilePath))
	return filepath.Join(dir, name+".html")
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	if override.Math != nil {
		value := *override.Math
		result.Math = &value
	}
	return result
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown service: stat base path "+basePath).
			WithTextCode("MARKDOWN_BASE_PATH_MISSING")
	}
	return os.DirFS(basePath), nil
}
