package rendercmd

import (
	"errors"

	"github.com/goliatone/go-texmark/internal/commands"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Services bundles the backends the handlers delegate to. Nil members leave
// the matching handlers out of the set.
type Services struct {
	Renderer  interfaces.MathRenderer
	Converter FileConverter
	Markdown  interfaces.MarkdownService
}

// HandlerSet groups the handlers produced by RegisterRenderCommands.
type HandlerSet struct {
	Formula   *RenderFormulaHandler
	File      *ConvertFileHandler
	Directory *ConvertDirectoryHandler
	Page      *RenderPageHandler
}

// Handlers returns the non-nil handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	var out []any
	if s.Formula != nil {
		out = append(out, s.Formula)
	}
	if s.File != nil {
		out = append(out, s.File)
	}
	if s.Directory != nil {
		out = append(out, s.Directory)
	}
	if s.Page != nil {
		out = append(out, s.Page)
	}
	return out
}

// RegisterRenderCommands builds the handlers for the configured services and
// registers them with reg when it is non-nil.
func RegisterRenderCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if services.Renderer == nil && services.Converter == nil && services.Markdown == nil {
		return nil, errors.New("render command registration: no services configured")
	}

	logger := commands.CommandLogger(provider, "render")
	set := &HandlerSet{}
	if services.Renderer != nil {
		set.Formula = NewRenderFormulaHandler(services.Renderer, logger)
	}
	if services.Converter != nil {
		set.File = NewConvertFileHandler(services.Converter, logger)
		set.Directory = NewConvertDirectoryHandler(services.Converter, logger)
	}
	if services.Markdown != nil {
		set.Page = NewRenderPageHandler(services.Markdown, logger)
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
