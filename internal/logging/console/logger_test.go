package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-texmark/internal/logging"
	"github.com/goliatone/go-texmark/internal/logging/console"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		Level:    "debug",
	})

	logger := logging.ScanLogger(provider)
	logger = logging.WithDelimiterContext(logger, []interfaces.DelimiterSpec{
		{Left: "$$", Right: "$$", Display: true},
		{Left: "$", Right: "$"},
	}, "")
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"correlation_id": "req-1234",
	})
	logger = logger.WithContext(ctx)

	logger.Info("scan.apply.completed",
		"result", interfaces.ScanResult{Nodes: 1, InlineRegions: 2},
		"display", true,
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535897Z INFO [texmark.scan] scan.apply.completed correlation_id=req-1234 " +
		"delimiter=$$...$$:display,$...$:inline display=true " +
		"result={display:0,formula_boxes:0,inline:2,nodes:1,unterminated:0}"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_KeepsForeignModuleField(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Level: "info"})

	logger := provider.GetLogger("texmark.convert").WithFields(map[string]any{"module": "texmark.scan"})
	logger.Info("convert.file.completed")

	if !strings.Contains(buf.String(), "[texmark.convert] convert.file.completed module=texmark.scan") {
		t.Fatalf("expected differing module field to be kept, got %s", buf.String())
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: time.Now,
		Level:    "info",
	})

	logger := provider.GetLogger("texmark.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "path", "docs/a b.html")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `path="docs/a b.html"`) {
		t.Fatalf("expected quoted path, got %s", lines[0])
	}
	if strings.Contains(lines[0], "ignored.debug") {
		t.Fatalf("unexpected debug log present: %s", lines[0])
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel(" WARNING "); !ok || level != console.LevelWarn {
		t.Fatalf("expected warn level, got %v %v", level, ok)
	}
	if level, ok := console.ParseLevel("verbose"); ok || level != console.LevelInfo {
		t.Fatalf("expected fallback to info, got %v %v", level, ok)
	}
}
