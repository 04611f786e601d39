package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-texmark/internal/runtimeconfig"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_Sentinels(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "no delimiters",
			mutate: func(c *runtimeconfig.Config) { c.Math.Delimiters = nil },
			want:   runtimeconfig.ErrDelimitersRequired,
		},
		{
			name: "blank marker",
			mutate: func(c *runtimeconfig.Config) {
				c.Math.Delimiters = []interfaces.DelimiterSpec{{Left: " ", Right: "$"}}
			},
			want: runtimeconfig.ErrDelimiterMarkerRequired,
		},
		{
			name: "duplicate pair",
			mutate: func(c *runtimeconfig.Config) {
				c.Math.Delimiters = append(c.Math.Delimiters, interfaces.DelimiterSpec{Left: "$", Right: "$"})
			},
			want: runtimeconfig.ErrDelimiterDuplicate,
		},
		{
			name:   "unknown extension",
			mutate: func(c *runtimeconfig.Config) { c.Markdown.Extensions = []string{"mermaid"} },
			want:   runtimeconfig.ErrMarkdownExtensionUnknown,
		},
		{
			name:   "bad pattern",
			mutate: func(c *runtimeconfig.Config) { c.Convert.Pattern = "[" },
			want:   runtimeconfig.ErrConvertPatternInvalid,
		},
		{
			name:   "missing output suffix",
			mutate: func(c *runtimeconfig.Config) { c.Convert.OutputSuffix = "" },
			want:   runtimeconfig.ErrConvertOutputRequired,
		},
		{
			name:   "missing logging provider",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Provider = "" },
			want:   runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name:   "unknown logging provider",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" },
			want:   runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name:   "invalid level",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Level = "loud" },
			want:   runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(c *runtimeconfig.Config) {
				c.Logging.Provider = "gologger"
				c.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_AllowsEmptySuffixInPlace(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Convert.InPlace = true
	cfg.Convert.OutputSuffix = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected in-place conversion without suffix to validate: %v", err)
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Decode([]byte(`
math:
  delimiters:
    - left: "\\("
      right: "\\)"
  skip_classes: [nomath]
markdown:
  extensions: [table, footnote]
logging:
  provider: gologger
  format: json
  level: debug
`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(cfg.Math.Delimiters) != 1 || cfg.Math.Delimiters[0].Left != `\(` || cfg.Math.Delimiters[0].Display {
		t.Fatalf("unexpected delimiters %+v", cfg.Math.Delimiters)
	}
	if cfg.Math.FormulaBoxClass != "formula-box" {
		t.Fatalf("expected default formula box class to survive, got %q", cfg.Math.FormulaBoxClass)
	}
	if cfg.Convert.Pattern != "*.html" || cfg.Markdown.Pattern != "*.md" {
		t.Fatalf("expected default patterns, got %q %q", cfg.Convert.Pattern, cfg.Markdown.Pattern)
	}
	if cfg.Logging.Provider != "gologger" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	opts := cfg.Markdown.ParseOptions()
	if opts.Math == nil || !*opts.Math || len(opts.Extensions) != 2 {
		t.Fatalf("unexpected parse options %+v", opts)
	}
}

func TestDecodeEmptyInputReturnsDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Decode([]byte("  \n"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(cfg.Math.Delimiters) != 2 {
		t.Fatalf("expected default delimiters, got %+v", cfg.Math.Delimiters)
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown section":  "theme: dark\n",
		"wrong type":       "convert:\n  recursive: sometimes\n",
		"empty delimiters": "math:\n  delimiters: []\n",
		"unknown provider": "logging:\n  provider: syslog\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runtimeconfig.Decode([]byte(doc))
			if err == nil {
				t.Fatalf("expected schema error")
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsInconsistentConfig(t *testing.T) {
	_, err := runtimeconfig.Decode([]byte("convert:\n  output_suffix: \"\"\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texmark.yaml")
	if err := os.WriteFile(path, []byte("convert:\n  in_place: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Convert.InPlace {
		t.Fatalf("expected in_place to be set")
	}
}
