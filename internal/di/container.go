package di

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	rendercmd "github.com/goliatone/go-texmark/internal/commands/render"
	"github.com/goliatone/go-texmark/internal/convert"
	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/internal/logging/console"
	"github.com/goliatone/go-texmark/internal/logging/gologger"
	"github.com/goliatone/go-texmark/internal/markdown"
	"github.com/goliatone/go-texmark/internal/runtimeconfig"
	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/internal/transform"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// Container wires the renderer, scanner, file workflows and command handlers
// from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	renderer       interfaces.MathRenderer
	metrics        interfaces.MathMetrics
	markdownBase   string

	scanner   *scan.Scanner
	markdown  *markdown.Service
	converter *convert.Converter
	commands  *rendercmd.HandlerSet
	registry  rendercmd.CommandRegistry
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRenderer overrides the default transformer.
func WithRenderer(renderer interfaces.MathRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithMetrics installs scan telemetry.
func WithMetrics(metrics interfaces.MathMetrics) Option {
	return func(c *Container) {
		c.metrics = metrics
	}
}

// WithMarkdownBasePath sets the directory Markdown pages are loaded from.
// Defaults to the working directory.
func WithMarkdownBasePath(path string) Option {
	return func(c *Container) {
		c.markdownBase = path
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg rendercmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		code := "CONFIG_INVALID"
		if isDelimiterError(err) {
			code = "CONFIG_DELIMITERS_INVALID"
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid texmark configuration").
			WithTextCode(code)
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.renderer == nil {
		c.renderer = transform.Default()
	}
	c.configureScanner()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	c.converter = convert.New(convert.Config{
		Pattern:      cfg.Convert.Pattern,
		Recursive:    cfg.Convert.Recursive,
		OutputSuffix: cfg.Convert.OutputSuffix,
		InPlace:      cfg.Convert.InPlace,
	}, c.scanner, convert.WithLogger(logging.ConvertLogger(c.loggerProvider)))

	set, err := rendercmd.RegisterRenderCommands(c.registry, rendercmd.Services{
		Renderer:  c.renderer,
		Converter: c.converter,
		Markdown:  c.markdown,
	}, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.commands = set

	logging.RootLogger(c.loggerProvider).Debug("container.configured",
		"delimiters", len(cfg.Math.Delimiters),
		"logging_provider", cfg.Logging.Provider,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{Level: c.Config.Logging.Level})
	}
	return nil
}

func (c *Container) configureScanner() {
	opts := []scan.Option{
		scan.WithRenderer(c.renderer),
		scan.WithDelimiters(c.Config.Math.Delimiters),
		scan.WithSkipClasses(c.Config.Math.SkipClasses...),
		scan.WithFormulaBoxClass(c.Config.Math.FormulaBoxClass),
		scan.WithLogger(logging.ScanLogger(c.loggerProvider)),
	}
	if len(c.Config.Math.SkipTags) > 0 {
		opts = append(opts, scan.WithSkipTags(c.Config.Math.SkipTags...))
	}
	if c.metrics != nil {
		opts = append(opts, scan.WithMetrics(c.metrics))
	}
	c.scanner = scan.New(opts...)
}

func (c *Container) configureMarkdown() error {
	md := c.Config.Markdown
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.markdownBase,
		Pattern:   md.Pattern,
		Recursive: md.Recursive,
		Parser:    md.ParseOptions(),
	}, nil,
		markdown.WithScanner(c.scanner),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.markdown = svc
	return nil
}

// LoggerProvider returns the provider in use.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Renderer returns the math transformer.
func (c *Container) Renderer() interfaces.MathRenderer {
	return c.renderer
}

// Scanner returns the configured region scanner.
func (c *Container) Scanner() *scan.Scanner {
	return c.scanner
}

// MarkdownService returns the Markdown page service.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdown
}

// Converter returns the HTML file converter.
func (c *Container) Converter() *convert.Converter {
	return c.converter
}

// Commands returns the command handlers.
func (c *Container) Commands() *rendercmd.HandlerSet {
	return c.commands
}

func isDelimiterError(err error) bool {
	return errors.Is(err, scan.ErrDelimitersRequired) ||
		errors.Is(err, scan.ErrDelimiterMarkerRequired) ||
		errors.Is(err, scan.ErrDelimiterDuplicate)
}
