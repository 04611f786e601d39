package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "texmark.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger = logger.WithFields(map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ScanLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != scanModule {
		t.Fatalf("expected module %s, got %v", scanModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != scanModule {
		t.Fatalf("expected module field %s, got %v", scanModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestNamedModuleLoggers(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		rootModule:     RootLogger,
		markdownModule: MarkdownLogger,
		convertModule:  ConvertLogger,
		commandsModule: CommandsLogger,
	}
	for module, fn := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = fn(provider)
		if len(provider.requested) == 0 || provider.requested[0] != module {
			t.Fatalf("expected %s request, got %v", module, provider.requested)
		}
	}
}

func TestWithDocumentContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithDocumentContext(rec, " docs/index.html ", "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one fields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldDocumentPath] != "docs/index.html" {
		t.Fatalf("expected trimmed path, got %v", rec.fields[0][fieldDocumentPath])
	}
	if _, ok := rec.fields[0][fieldAction]; ok {
		t.Fatalf("expected blank action to be skipped")
	}

}

func TestWithDelimiterContext(t *testing.T) {
	rec := &recordingLogger{}
	specs := []interfaces.DelimiterSpec{
		{Left: "$$", Right: "$$", Display: true},
		{Left: `\(`, Right: `\)`},
	}
	_ = WithDelimiterContext(rec, specs, " math ")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one fields call, got %d", len(rec.fields))
	}
	if got := rec.fields[0][fieldDelimiter]; got != `$$...$$:display,\(...\):inline` {
		t.Fatalf("unexpected delimiter field %v", got)
	}
	if got := rec.fields[0][fieldScope]; got != "math" {
		t.Fatalf("unexpected scope field %v", got)
	}

	_ = WithDelimiterContext(rec, nil, "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected empty context to skip the fields call, got %d", len(rec.fields))
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2, "a": 3})

	fields := ContextFields(ctx)
	if fields["a"] != 3 || fields["b"] != 2 {
		t.Fatalf("unexpected merged fields %v", fields)
	}
	fields["a"] = 99
	if ContextFields(ctx)["a"] != 3 {
		t.Fatalf("expected ContextFields to return a copy")
	}
}

func TestBindAttachesContext(t *testing.T) {
	rec := &recordingLogger{}
	ctx := context.Background()
	_ = Bind(rec, ctx)
	if len(rec.contexts) != 1 {
		t.Fatalf("expected context to be attached")
	}
	if _, ok := Bind(nil, ctx).(noopLogger); !ok {
		t.Fatalf("expected NoOp for nil logger")
	}
}
