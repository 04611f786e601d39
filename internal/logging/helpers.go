package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// WithFields attaches structured fields to a logger when it implements
// FieldsLogger. A nil logger or empty map returns logger unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// Bind returns logger attached to ctx. A nil logger yields NoOp.
func Bind(logger interfaces.Logger, ctx context.Context) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	if ctx == nil {
		return logger
	}
	return logger.WithContext(ctx)
}
