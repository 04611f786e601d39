package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/net/html"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/internal/markdown"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

const (
	textCodeNotFound    = "CONVERT_NOT_FOUND"
	textCodeReadFailed  = "CONVERT_READ_FAILED"
	textCodeParseFailed = "CONVERT_PARSE_FAILED"
	textCodeWriteFailed = "CONVERT_WRITE_FAILED"
	textCodeWalkFailed  = "CONVERT_WALK_FAILED"
)

// DocumentScanner renders math regions inside a parsed HTML document.
type DocumentScanner interface {
	ScanDocument(ctx context.Context, r io.Reader) (*html.Node, interfaces.ScanResult, error)
}

// Config controls which files are converted and where results are written.
type Config struct {
	Pattern      string
	Recursive    bool
	OutputSuffix string
	InPlace      bool
}

// Options overrides Config for a single directory conversion.
type Options struct {
	Pattern   string
	Recursive *bool
	DryRun    bool
}

// FileResult reports the outcome for one file.
type FileResult struct {
	Path    string
	Output  string
	Changed bool
	Scan    interfaces.ScanResult
	Err     error
}

// Report aggregates a directory conversion.
type Report struct {
	Files     []FileResult
	Converted int
	Unchanged int
	Failed    int
	Duration  time.Duration
}

// Errors returns the per-file failures in path order.
func (r *Report) Errors() []error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, file := range r.Files {
		if file.Err != nil {
			errs = append(errs, file.Err)
		}
	}
	return errs
}

// Converter renders math in HTML files on disk.
type Converter struct {
	cfg     Config
	scanner DocumentScanner
	logger  interfaces.Logger
}

// Option customises a Converter.
type Option func(*Converter)

// WithLogger overrides the converter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Converter. An empty pattern defaults to "*.html".
func New(cfg Config, scanner DocumentScanner, opts ...Option) *Converter {
	if strings.TrimSpace(cfg.Pattern) == "" {
		cfg.Pattern = "*.html"
	}
	c := &Converter{
		cfg:     cfg,
		scanner: scanner,
		logger:  logging.ConvertLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ConvertFile scans a single HTML file and writes the result when math was
// rendered. Unchanged files are never written.
func (c *Converter) ConvertFile(ctx context.Context, path string, dryRun bool) FileResult {
	result := FileResult{Path: path, Output: OutputPath(path, c.cfg.OutputSuffix, c.cfg.InPlace)}
	logger := logging.WithDocumentContext(c.logger, path, "convert")

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	source, err := os.ReadFile(path)
	if err != nil {
		result.Err = wrapFileError(err, path, textCodeReadFailed, "read html file")
		logger.Error("convert.file.read_failed", "error", err)
		return result
	}

	doc, scan, err := c.scanner.ScanDocument(ctx, bytes.NewReader(source))
	if err != nil {
		result.Err = goerrors.Wrap(err, goerrors.CategoryBadInput, "parse html file "+path).
			WithTextCode(textCodeParseFailed)
		logger.Error("convert.file.parse_failed", "error", err)
		return result
	}
	result.Scan = scan
	result.Changed = scan.Changed()
	if !result.Changed || dryRun {
		logger.Debug("convert.file.skipped", "changed", result.Changed, "dry_run", dryRun)
		return result
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		result.Err = goerrors.Wrap(err, goerrors.CategoryOperation, "render html file "+path).
			WithTextCode(textCodeWriteFailed)
		return result
	}
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(result.Output, buf.Bytes(), mode); err != nil {
		result.Err = wrapFileError(err, result.Output, textCodeWriteFailed, "write html file")
		logger.Error("convert.file.write_failed", "error", err)
		return result
	}

	logger.Info("convert.file.completed",
		"output", result.Output,
		"display", scan.DisplayRegions,
		"inline", scan.InlineRegions,
		"formula_boxes", scan.FormulaBoxes,
		"unterminated", scan.Unterminated,
	)
	return result
}

// ConvertDirectory converts every matching file under dir. Per-file failures
// are recorded in the report; only traversal errors abort the run. Files that
// already carry the output suffix are ignored.
func (c *Converter) ConvertDirectory(ctx context.Context, dir string, opts Options) (*Report, error) {
	started := time.Now()
	root := filepath.Clean(dir)
	if info, err := os.Stat(root); err != nil {
		return nil, wrapFileError(err, root, textCodeReadFailed, "open directory")
	} else if !info.IsDir() {
		return nil, goerrors.New("convert: "+root+" is not a directory", goerrors.CategoryBadInput).
			WithTextCode(textCodeReadFailed)
	}

	pattern := c.cfg.Pattern
	if strings.TrimSpace(opts.Pattern) != "" {
		pattern = opts.Pattern
	}
	recursive := c.cfg.Recursive
	if opts.Recursive != nil {
		recursive = *opts.Recursive
	}

	var paths []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if !markdown.MatchPattern(pattern, filepath.ToSlash(rel)) || c.isOutput(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, goerrors.Wrap(walkErr, goerrors.CategoryOperation, "walk directory "+root).
			WithTextCode(textCodeWalkFailed)
	}
	sort.Strings(paths)

	report := &Report{}
	for _, path := range paths {
		file := c.ConvertFile(ctx, path, opts.DryRun)
		switch {
		case file.Err != nil:
			report.Failed++
		case file.Changed:
			report.Converted++
		default:
			report.Unchanged++
		}
		report.Files = append(report.Files, file)
	}
	report.Duration = time.Since(started)

	c.logger.Info("convert.directory.completed",
		"directory", root,
		"converted", report.Converted,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"dry_run", opts.DryRun,
	)
	return report, nil
}

func (c *Converter) isOutput(path string) bool {
	if c.cfg.InPlace || c.cfg.OutputSuffix == "" {
		return false
	}
	ext := filepath.Ext(path)
	return strings.HasSuffix(strings.TrimSuffix(path, ext), c.cfg.OutputSuffix)
}

// OutputPath returns where the converted form of path is written: path itself
// when converting in place, otherwise the suffix inserted before the extension
// (page.html becomes page.rendered.html).
func OutputPath(path, suffix string, inPlace bool) string {
	if inPlace || suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func wrapFileError(err error, path, code, message string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, message+": "+path).
			WithTextCode(textCodeNotFound)
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, message+": "+path).
		WithTextCode(code)
}
