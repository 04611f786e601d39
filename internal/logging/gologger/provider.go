package gologger

import (
	"context"
	"maps"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// modulePrefix qualifies short focus names such as "scan".
const modulePrefix = "texmark."

// Config mirrors the logging section of the runtime configuration. Focus
// names may omit the module prefix.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Provider hands out go-logger children as interfaces.Logger values.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds a go-logger root from cfg. Unknown formats are rejected
// with a validation error.
func NewProvider(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, goerrors.New("unsupported go-logger format "+cfg.Format, goerrors.CategoryValidation).
			WithTextCode("LOGGING_FORMAT_UNSUPPORTED")
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if len(cfg.Focus) > 0 {
		root.Focus(normalizeFocus(cfg.Focus)...)
	}

	return &Provider{root: root}, nil
}

// GetLogger returns the named child logger, or the root for a blank name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	var inner glog.Logger
	if name == "" {
		inner = p.root
	} else {
		inner = p.root.GetLogger(name)
	}
	return wrap(inner)
}

// wrap adapts a go-logger Logger to interfaces.Logger.
func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

// Delimiter specs and scan results are flattened before they reach go-logger
// so JSON output carries labels and counters instead of struct dumps.
func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, logging.Args(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, logging.Args(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, logging.Args(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, logging.Args(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, logging.Args(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, logging.Args(args)...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	fields = logging.Fields(fields)
	if len(fields) == 0 {
		return l
	}

	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return wrap(with.WithFields(fields))
	}

	args := make([]any, 0, len(fields)*2)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, k, fields[k])
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return wrap(with.With(args...))
	}
	return l
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return ""
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}

// normalizeFocus trims names, qualifies short ones with the module prefix and
// drops duplicates.
func normalizeFocus(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name != "texmark" && !strings.HasPrefix(name, modulePrefix) {
			name = modulePrefix + name
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
