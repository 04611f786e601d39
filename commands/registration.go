// Package commands exposes the texmark command handlers to hosts that run
// them through a registry or the go-command dispatcher.
package commands

import (
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-texmark"
	rendercmd "github.com/goliatone/go-texmark/internal/commands/render"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how module handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the registered handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Close unsubscribes every dispatcher subscription.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterModuleCommands registers the handlers built by module with the
// configured registry and dispatcher.
func RegisterModuleCommands(module *texmark.Module, opts RegistrationOptions) (*RegistrationResult, error) {
	if module == nil {
		return &RegistrationResult{}, nil
	}

	result := &RegistrationResult{}
	var errs error
	for _, handler := range module.Commands().Handlers() {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure the module services are configured")
	}
	return result, errs
}

// Dispatcher subscribes handlers to the process-wide go-command dispatcher.
type Dispatcher struct {
	// MaxRetries is passed to the command runner when positive.
	MaxRetries int
}

// RegisterCommand implements CommandDispatcher.
func (d Dispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *rendercmd.RenderFormulaHandler:
		return subscribe[texmark.RenderFormulaCommand](h, d.MaxRetries), nil
	case *rendercmd.ConvertFileHandler:
		return subscribe[texmark.ConvertFileCommand](h, d.MaxRetries), nil
	case *rendercmd.ConvertDirectoryHandler:
		return subscribe[texmark.ConvertDirectoryCommand](h, d.MaxRetries), nil
	case *rendercmd.RenderPageHandler:
		return subscribe[texmark.RenderPageCommand](h, d.MaxRetries), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}

func subscribe[T command.Message](handler command.Commander[T], retries int) CommandSubscription {
	if retries > 0 {
		return dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(retries))
	}
	return dispatcher.SubscribeCommand(handler)
}
