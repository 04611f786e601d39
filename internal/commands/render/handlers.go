package rendercmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/net/html"

	"github.com/goliatone/go-texmark/internal/commands"
	"github.com/goliatone/go-texmark/internal/convert"
	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/internal/markdown"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

const (
	renderFormulaOperation    = "render.formula"
	convertFileOperation      = "convert.file"
	convertDirectoryOperation = "convert.directory"
	renderPageOperation       = "markdown.render_page"
)

// ErrServiceMissing is returned when a handler runs without its backing service.
var ErrServiceMissing = errors.New("render command: service is not configured")

var (
	_ command.Commander[RenderFormulaCommand]    = (*RenderFormulaHandler)(nil)
	_ command.Commander[ConvertFileCommand]      = (*ConvertFileHandler)(nil)
	_ command.Commander[ConvertDirectoryCommand] = (*ConvertDirectoryHandler)(nil)
	_ command.Commander[RenderPageCommand]       = (*RenderPageHandler)(nil)
)

// FileConverter is the converter surface the handlers depend on.
type FileConverter interface {
	ConvertFile(ctx context.Context, path string, dryRun bool) convert.FileResult
	ConvertDirectory(ctx context.Context, dir string, opts convert.Options) (*convert.Report, error)
}

// RenderFormulaHandler renders one formula through the transformer.
type RenderFormulaHandler struct {
	inner *commands.Handler[RenderFormulaCommand]
}

// NewRenderFormulaHandler creates a handler bound to renderer.
func NewRenderFormulaHandler(renderer interfaces.MathRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderFormulaCommand]) *RenderFormulaHandler {
	exec := func(ctx context.Context, msg RenderFormulaCommand) error {
		if renderer == nil {
			return ErrServiceMissing
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Operation: renderFormulaOperation,
			HTML:      renderer.Render(msg.Markup, msg.Display),
		})
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderFormulaCommand]{
		commands.WithLogger[RenderFormulaCommand](logger),
		commands.WithOperation[RenderFormulaCommand](renderFormulaOperation),
		commands.WithMessageFields(func(msg RenderFormulaCommand) map[string]any {
			return map[string]any{"display": msg.Display}
		}),
	}
	return &RenderFormulaHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[RenderFormulaCommand].
func (h *RenderFormulaHandler) Execute(ctx context.Context, msg RenderFormulaCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ConvertFileHandler renders math inside one HTML file.
type ConvertFileHandler struct {
	inner *commands.Handler[ConvertFileCommand]
}

// NewConvertFileHandler creates a handler bound to converter.
func NewConvertFileHandler(converter FileConverter, logger interfaces.Logger, opts ...commands.HandlerOption[ConvertFileCommand]) *ConvertFileHandler {
	exec := func(ctx context.Context, msg ConvertFileCommand) error {
		if converter == nil {
			return ErrServiceMissing
		}
		result := converter.ConvertFile(ctx, msg.Path, msg.DryRun)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Operation: convertFileOperation,
			Output:    result.Output,
			File:      &result,
		})
		return result.Err
	}

	handlerOpts := []commands.HandlerOption[ConvertFileCommand]{
		commands.WithLogger[ConvertFileCommand](logger),
		commands.WithOperation[ConvertFileCommand](convertFileOperation),
		commands.WithMessageFields(func(msg ConvertFileCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertFileCommand](logger)),
	}
	return &ConvertFileHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ConvertFileCommand].
func (h *ConvertFileHandler) Execute(ctx context.Context, msg ConvertFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ConvertDirectoryHandler renders math in every matching HTML file of a
// directory. Per-file failures are reported through the callback and logged;
// they do not fail the command.
type ConvertDirectoryHandler struct {
	inner *commands.Handler[ConvertDirectoryCommand]
}

// NewConvertDirectoryHandler creates a handler bound to converter.
func NewConvertDirectoryHandler(converter FileConverter, logger interfaces.Logger, opts ...commands.HandlerOption[ConvertDirectoryCommand]) *ConvertDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ConvertDirectoryCommand) error {
		if converter == nil {
			return ErrServiceMissing
		}
		report, err := converter.ConvertDirectory(ctx, msg.Directory, convert.Options{
			Pattern:   msg.Pattern,
			Recursive: msg.Recursive,
			DryRun:    msg.DryRun,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"converted_count": report.Converted,
			"unchanged_count": report.Unchanged,
			"failed_count":    report.Failed,
			"dry_run":         msg.DryRun,
		}).Info("render.command.convert_directory.completed")
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Operation: convertDirectoryOperation,
			Report:    report,
		})
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertDirectoryCommand]{
		commands.WithLogger[ConvertDirectoryCommand](baseLogger),
		commands.WithOperation[ConvertDirectoryCommand](convertDirectoryOperation),
		commands.WithMessageFields(func(msg ConvertDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.Recursive != nil {
				fields["recursive"] = *msg.Recursive
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertDirectoryCommand](baseLogger)),
	}
	return &ConvertDirectoryHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ConvertDirectoryCommand].
func (h *ConvertDirectoryHandler) Execute(ctx context.Context, msg ConvertDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderPageHandler renders a Markdown page into a standalone HTML file.
type RenderPageHandler struct {
	inner *commands.Handler[RenderPageCommand]
}

// NewRenderPageHandler creates a handler bound to the Markdown service.
func NewRenderPageHandler(service interfaces.MarkdownService, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPageCommand]) *RenderPageHandler {
	exec := func(ctx context.Context, msg RenderPageCommand) error {
		if service == nil {
			return ErrServiceMissing
		}
		doc, err := service.Load(ctx, msg.Path, interfaces.LoadOptions{
			Parser: interfaces.ParseOptions{Math: msg.Math},
		})
		if err != nil {
			return err
		}

		page, err := PageHTML(doc)
		if err != nil {
			return err
		}
		envelope := ResultEnvelope{
			Operation: renderPageOperation,
			HTML:      page,
			Document:  doc,
		}
		if !msg.DryRun {
			envelope.Output = filepath.Join(msg.OutputDir, filepath.Base(markdown.OutputName(doc)))
			if err := os.MkdirAll(msg.OutputDir, 0o755); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryOperation, "create output directory "+msg.OutputDir).
					WithTextCode("RENDER_PAGE_WRITE_FAILED")
			}
			if err := os.WriteFile(envelope.Output, []byte(page), 0o644); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryOperation, "write page "+envelope.Output).
					WithTextCode("RENDER_PAGE_WRITE_FAILED")
			}
		}
		invokeCallback(msg.ResultCallback, envelope)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderPageCommand]{
		commands.WithLogger[RenderPageCommand](logger),
		commands.WithOperation[RenderPageCommand](renderPageOperation),
		commands.WithMessageFields(func(msg RenderPageCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if msg.Math != nil {
				fields["math"] = *msg.Math
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderPageCommand](logger)),
	}
	return &RenderPageHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[RenderPageCommand].
func (h *RenderPageHandler) Execute(ctx context.Context, msg RenderPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PageHTML wraps a rendered document body in a minimal HTML5 page titled
// after the front matter.
func PageHTML(doc *interfaces.Document) (string, error) {
	if doc == nil {
		return "", goerrors.New("render page: document is nil", goerrors.CategoryBadInput).
			WithTextCode("RENDER_PAGE_DOCUMENT_REQUIRED")
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(doc.FrontMatter.Title))
	buf.WriteString("</title>\n</head>\n<body>\n")
	buf.Write(doc.BodyHTML)
	buf.WriteString("</body>\n</html>\n")
	return buf.String(), nil
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb != nil {
		cb(envelope)
	}
}
