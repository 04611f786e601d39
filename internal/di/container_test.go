package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	rendercmd "github.com/goliatone/go-texmark/internal/commands/render"
	"github.com/goliatone/go-texmark/internal/logging/gologger"
	"github.com/goliatone/go-texmark/internal/runtimeconfig"
	"github.com/goliatone/go-texmark/internal/scan"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

type recordingProvider struct {
	mu      sync.Mutex
	entries []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{provider: p}
}

func (p *recordingProvider) has(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.entries {
		if entry == msg {
			return true
		}
	}
	return false
}

type recordingLogger struct {
	provider *recordingProvider
}

func (l *recordingLogger) log(msg string) {
	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	l.provider.entries = append(l.provider.entries, msg)
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log(msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log(msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.log(msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

type countingRegistry struct{ count int }

func (r *countingRegistry) RegisterCommand(any) error {
	r.count++
	return nil
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Math.Delimiters = nil
	_, err := NewContainer(cfg)
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if !errors.Is(err, scan.ErrDelimitersRequired) {
		t.Fatalf("expected delimiter sentinel, got %v", err)
	}
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.TextCode != "CONFIG_DELIMITERS_INVALID" {
		t.Fatalf("expected delimiter text code, got %v", err)
	}
}

func TestNewContainerTagsOtherConfigErrors(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Convert.OutputSuffix = ""
	_, err := NewContainer(cfg)
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.TextCode != "CONFIG_INVALID" {
		t.Fatalf("expected generic config text code, got %v", err)
	}
}

func TestNewContainerWiresServices(t *testing.T) {
	rec := &recordingProvider{}
	reg := &countingRegistry{}
	metrics := &scan.CounterMetrics{}
	base := t.TempDir()

	container, err := NewContainer(runtimeconfig.DefaultConfig(),
		WithLoggerProvider(rec),
		WithMetrics(metrics),
		WithMarkdownBasePath(base),
		WithCommandRegistry(reg),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if !rec.has("container.configured") {
		t.Fatalf("expected container.configured entry, got %v", rec.entries)
	}
	if reg.count != 4 {
		t.Fatalf("expected 4 handlers registered, got %d", reg.count)
	}

	out, _, err := container.Scanner().ScanFragment(context.Background(), "<p>$x$</p>")
	if err != nil || !strings.Contains(out, "katex-inline") {
		t.Fatalf("unexpected scan output %q (%v)", out, err)
	}
	if scans, _, inline, _ := metrics.Snapshot(); scans != 1 || inline != 1 {
		t.Fatalf("expected metrics to be wired, got scans=%d inline=%d", scans, inline)
	}

	if err := os.WriteFile(filepath.Join(base, "page.md"), []byte("$y$\n"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	var page rendercmd.ResultEnvelope
	err = container.Commands().Page.Execute(context.Background(), rendercmd.RenderPageCommand{
		Path:           "page.md",
		DryRun:         true,
		ResultCallback: func(env rendercmd.ResultEnvelope) { page = env },
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(page.HTML, "katex-inline") {
		t.Fatalf("expected rendered page, got %s", page.HTML)
	}
}

func TestNewContainerHonoursSkipClasses(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Math.SkipClasses = []string{"nomath"}

	container, err := NewContainer(cfg, WithLoggerProvider(&recordingProvider{}), WithMarkdownBasePath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	out, result, err := container.Scanner().ScanFragment(context.Background(), `<p class="nomath">$x$</p>`)
	if err != nil || result.Changed() || out != `<p class="nomath">$x$</p>` {
		t.Fatalf("expected skipped region, got %q %+v (%v)", out, result, err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg, WithMarkdownBasePath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if logger := provider.GetLogger("texmark.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}
