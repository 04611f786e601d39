package rendercmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-texmark/internal/convert"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

const (
	renderFormulaMessageType    = "texmark.render.formula"
	convertFileMessageType      = "texmark.convert.file"
	convertDirectoryMessageType = "texmark.convert.directory"
	renderPageMessageType       = "texmark.markdown.render_page"
)

// ResultEnvelope carries handler output back to the caller.
type ResultEnvelope struct {
	Operation string
	HTML      string
	Output    string
	File      *convert.FileResult
	Report    *convert.Report
	Document  *interfaces.Document
}

// ResultCallback receives the outcome of a command.
type ResultCallback func(ResultEnvelope)

// RenderFormulaCommand renders a single formula without delimiters.
type RenderFormulaCommand struct {
	Markup  string `json:"markup"`
	Display bool   `json:"display,omitempty"`
	// ResultCallback receives the rendered HTML.
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderFormulaCommand) Type() string { return renderFormulaMessageType }

// Validate ensures there is markup to render.
func (cmd RenderFormulaCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Markup, validation.Required, notBlank("texmark.render.formula.markup_required", "markup is required")),
	)
}

// ConvertFileCommand renders math inside one HTML file.
type ConvertFileCommand struct {
	Path           string         `json:"path"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ConvertFileCommand) Type() string { return convertFileMessageType }

// Validate ensures a path is present.
func (cmd ConvertFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, notBlank("texmark.convert.file.path_required", "path is required")),
	)
}

// ConvertDirectoryCommand renders math inside every matching HTML file under
// Directory.
type ConvertDirectoryCommand struct {
	Directory string `json:"directory"`
	// Pattern overrides the configured file glob.
	Pattern string `json:"pattern,omitempty"`
	// Recursive overrides the configured traversal mode when set.
	Recursive      *bool          `json:"recursive,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ConvertDirectoryCommand) Type() string { return convertDirectoryMessageType }

// Validate ensures directory input is present and the pattern compiles.
func (cmd ConvertDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, notBlank("texmark.convert.directory.directory_required", "directory is required")),
		validation.Field(&cmd.Pattern, validation.By(func(value any) error {
			pattern, _ := value.(string)
			if pattern == "" {
				return nil
			}
			if !validGlob(pattern) {
				return validation.NewError("texmark.convert.directory.pattern_invalid", "pattern is not a valid glob")
			}
			return nil
		})),
	)
}

// RenderPageCommand renders a Markdown page into an HTML file named after its
// slug inside OutputDir.
type RenderPageCommand struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir,omitempty"`
	// Math overrides the page front matter when set.
	Math           *bool          `json:"math,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderPageCommand) Type() string { return renderPageMessageType }

// Validate requires a page path, and an output directory unless running dry.
func (cmd RenderPageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, notBlank("texmark.markdown.render_page.path_required", "path is required")),
		validation.Field(&cmd.OutputDir, validation.When(!cmd.DryRun,
			validation.Required,
			notBlank("texmark.markdown.render_page.output_dir_required", "output directory is required"),
		)),
	)
}

func notBlank(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

func validGlob(pattern string) bool {
	_, err := filepath.Match(pattern, "")
	return err == nil
}
