// Package texmark renders a LaTeX-like math markup into nested HTML and finds
// delimited math regions inside HTML documents to render them in place.
//
// The package-level helpers use the built-in symbol tables and the default
// `$$…$$` / `$…$` delimiters. NewModule wires the complete runtime from a
// Config: scanner, Markdown pages, HTML file conversion and command handlers.
package texmark

import (
	"context"

	"golang.org/x/net/html"

	rendercmd "github.com/goliatone/go-texmark/internal/commands/render"
	"github.com/goliatone/go-texmark/internal/convert"
	"github.com/goliatone/go-texmark/internal/di"
	"github.com/goliatone/go-texmark/internal/markdown"
	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/internal/transform"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

type (
	DelimiterSpec = interfaces.DelimiterSpec
	ScanResult    = interfaces.ScanResult
	MathRenderer  = interfaces.MathRenderer
	Document      = interfaces.Document
	ParseOptions  = interfaces.ParseOptions
	LoadOptions   = interfaces.LoadOptions

	Transformer = transform.Transformer
	SymbolEntry = transform.SymbolEntry
	SymbolTable = transform.SymbolTable
	Tables      = transform.Tables
	Scanner     = scan.Scanner
	ScanOption  = scan.Option

	ConvertOptions = convert.Options
	ConvertReport  = convert.Report

	RenderFormulaCommand    = rendercmd.RenderFormulaCommand
	ConvertFileCommand      = rendercmd.ConvertFileCommand
	ConvertDirectoryCommand = rendercmd.ConvertDirectoryCommand
	RenderPageCommand       = rendercmd.RenderPageCommand
	ResultEnvelope          = rendercmd.ResultEnvelope
	CommandRegistry         = rendercmd.CommandRegistry
	ModuleOption            = di.Option
)

var (
	WithLoggerProvider    = di.WithLoggerProvider
	WithRenderer          = di.WithRenderer
	WithMetrics           = di.WithMetrics
	WithMarkdownBasePath  = di.WithMarkdownBasePath
	WithCommandRegistry   = di.WithCommandRegistry
	NewTransformer        = transform.New
	WithTables            = transform.WithTables
	DefaultTables         = transform.DefaultTables
	NewSymbolTable        = transform.NewSymbolTable
	NewScanner            = scan.New
	WithScanDelimiters    = scan.WithDelimiters
	WithScanSkipClasses   = scan.WithSkipClasses
	WithScanSkipTags      = scan.WithSkipTags
	WithScanRenderer      = scan.WithRenderer
	WithFormulaBoxClass   = scan.WithFormulaBoxClass
	ConvertOutputPath     = convert.OutputPath
	MarkdownOutputName    = markdown.OutputName
	StripMathDelimiters   = transform.StripDelimiters
	ValidateDelimiterSpec = scan.ValidateDelimiters
)

// Render converts inline-mode markup into HTML using the default tables. One
// paired layer of `$$` or `$` around the markup is stripped first.
func Render(markup string) string {
	return transform.Default().Render(markup, false)
}

// RenderDisplay converts display-mode markup into HTML.
func RenderDisplay(markup string) string {
	return transform.Default().Render(markup, true)
}

// DefaultDelimiters returns `$$…$$` (display) followed by `$…$` (inline).
func DefaultDelimiters() []DelimiterSpec {
	return scan.DefaultDelimiters()
}

// Scan renders every default-delimited region under root in place.
func Scan(ctx context.Context, root *html.Node) ScanResult {
	return scan.New().Scan(ctx, root)
}

// ScanWith renders regions under root using the supplied delimiter set, in
// priority order.
func ScanWith(ctx context.Context, root *html.Node, delimiters []DelimiterSpec) ScanResult {
	return scan.New(scan.WithDelimiters(delimiters)).Scan(ctx, root)
}

// RenderHTML parses markup as a body fragment, renders its math regions and
// returns the serialised result. Markup without regions is returned as is.
func RenderHTML(ctx context.Context, markup string) (string, error) {
	out, _, err := scan.New().ScanFragment(ctx, markup)
	return out, err
}

// Module is the configured texmark runtime.
type Module struct {
	container *di.Container
}

// NewModule validates cfg and wires every service.
func NewModule(cfg Config, opts ...ModuleOption) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Renderer returns the configured transformer.
func (m *Module) Renderer() MathRenderer {
	return m.container.Renderer()
}

// Scanner returns the configured region scanner.
func (m *Module) Scanner() *Scanner {
	return m.container.Scanner()
}

// Markdown returns the Markdown page service.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Convert renders math in every matching HTML file under dir.
func (m *Module) Convert(ctx context.Context, dir string, opts ConvertOptions) (*ConvertReport, error) {
	return m.container.Converter().ConvertDirectory(ctx, dir, opts)
}

// Commands returns the command handlers.
func (m *Module) Commands() *rendercmd.HandlerSet {
	return m.container.Commands()
}
