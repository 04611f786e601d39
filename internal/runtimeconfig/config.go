package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

var (
	ErrDelimitersRequired      = scan.ErrDelimitersRequired
	ErrDelimiterMarkerRequired = scan.ErrDelimiterMarkerRequired
	ErrDelimiterDuplicate      = scan.ErrDelimiterDuplicate
)

var ErrMarkdownExtensionUnknown = errors.New("texmark config: markdown extension is unknown")
var ErrConvertPatternInvalid = errors.New("texmark config: convert pattern is invalid")
var ErrConvertOutputRequired = errors.New("texmark config: convert output suffix is required unless writing in place")
var ErrLoggingProviderRequired = errors.New("texmark config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("texmark config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("texmark config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("texmark config: logging format is invalid")

// Config aggregates the settings for the renderer, scanner and file workflows.
type Config struct {
	Math     MathConfig     `yaml:"math" json:"math"`
	Markdown MarkdownConfig `yaml:"markdown" json:"markdown"`
	Convert  ConvertConfig  `yaml:"convert" json:"convert"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// MathConfig controls region discovery.
type MathConfig struct {
	Delimiters      []interfaces.DelimiterSpec `yaml:"delimiters" json:"delimiters"`
	SkipTags        []string                   `yaml:"skip_tags" json:"skip_tags"`
	SkipClasses     []string                   `yaml:"skip_classes" json:"skip_classes"`
	FormulaBoxClass string                     `yaml:"formula_box_class" json:"formula_box_class"`
}

// MarkdownConfig mirrors interfaces.ParseOptions plus page discovery settings.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode"`
	Math       bool     `yaml:"math" json:"math"`
	Pattern    string   `yaml:"pattern" json:"pattern"`
	Recursive  bool     `yaml:"recursive" json:"recursive"`
}

// ConvertConfig controls HTML file conversion.
type ConvertConfig struct {
	Pattern      string `yaml:"pattern" json:"pattern"`
	Recursive    bool   `yaml:"recursive" json:"recursive"`
	OutputSuffix string `yaml:"output_suffix" json:"output_suffix"`
	InPlace      bool   `yaml:"in_place" json:"in_place"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider"`
	Level     string   `yaml:"level" json:"level"`
	Format    string   `yaml:"format" json:"format"`
	AddSource bool     `yaml:"add_source" json:"add_source"`
	Focus     []string `yaml:"focus" json:"focus"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Math: MathConfig{
			Delimiters: []interfaces.DelimiterSpec{
				{Left: "$$", Right: "$$", Display: true},
				{Left: "$", Right: "$", Display: false},
			},
			SkipTags:        []string{"script", "style", "code"},
			FormulaBoxClass: "formula-box",
		},
		Markdown: MarkdownConfig{
			Math:      true,
			Pattern:   "*.md",
			Recursive: true,
		},
		Convert: ConvertConfig{
			Pattern:      "*.html",
			Recursive:    true,
			OutputSuffix: ".rendered",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// MarkdownExtensions lists the extension names the markdown parser accepts.
var MarkdownExtensions = []string{
	"gfm", "table", "tables", "strikethrough", "linkify", "autolink",
	"tasklist", "definition", "footnote", "typographer",
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if err := scan.ValidateDelimiters(cfg.Math.Delimiters); err != nil {
		return err
	}
	for _, name := range cfg.Markdown.Extensions {
		if !isSupportedExtension(name) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, name)
		}
	}
	for _, pattern := range []string{cfg.Convert.Pattern, cfg.Markdown.Pattern} {
		if pattern == "" {
			continue
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: %s", ErrConvertPatternInvalid, pattern)
		}
	}
	if !cfg.Convert.InPlace && strings.TrimSpace(cfg.Convert.OutputSuffix) == "" {
		return ErrConvertOutputRequired
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ParseOptions converts the markdown section into parser options.
func (cfg MarkdownConfig) ParseOptions() interfaces.ParseOptions {
	math := cfg.Math
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), cfg.Extensions...),
		HardWraps:  cfg.HardWraps,
		SafeMode:   cfg.SafeMode,
		Math:       &math,
	}
}

func isSupportedExtension(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, known := range MarkdownExtensions {
		if key == known {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
