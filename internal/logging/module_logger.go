package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

const (
	rootModule     = "texmark"
	scanModule     = "texmark.scan"
	markdownModule = "texmark.markdown"
	convertModule  = "texmark.convert"
	commandsModule = "texmark.commands"
)

const (
	fieldDocumentPath = "document_path"
	fieldAction       = "action"
	fieldDelimiter    = "delimiter"
	fieldScope        = "scope"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. Every entry carries the module
// name under the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the top-level texmark logger.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// ScanLogger returns the logger namespace reserved for the region scanner.
func ScanLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, scanModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown pages.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// ConvertLogger returns the logger namespace reserved for HTML file conversion.
func ConvertLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, convertModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithDocumentContext annotates logger with the document path and the action
// being performed on it. Blank values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithDelimiterContext annotates logger with the delimiter set a scan runs
// with and, when set, the class limiting it.
func WithDelimiterContext(logger interfaces.Logger, specs []interfaces.DelimiterSpec, scope string) interfaces.Logger {
	fields := map[string]any{}
	if len(specs) > 0 {
		fields[fieldDelimiter] = FieldValue(specs)
	}
	if trimmed := strings.TrimSpace(scope); trimmed != "" {
		fields[fieldScope] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
