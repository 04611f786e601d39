package commands

import (
	"strings"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// CommandLogger returns a logger for one command group, named
// texmark.commands.<group>, carrying component and group fields.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := strings.TrimSpace(group)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, "texmark.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": name,
	})
}
