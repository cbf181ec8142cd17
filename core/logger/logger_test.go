package logger

import (
	"bytes"
	"strings"
	"testing"

	"log/slog"
)

func TestContextHandlerAddsRID(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := contextHandler{slog.NewTextHandler(buf, nil)}
	log := slog.New(handler).With("component", "app")

	ctx := WithRID(Background(), "12:34:56")
	ctx = WithHandler(ctx, "catalog")
	LogEvent(ctx, log, slog.LevelInfo, "test.event", slog.String("status", "ok"))

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	for _, want := range []string{"component=app", "event=test.event", "status=ok", "rid=12:34:56", "handler=catalog"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	got := SanitizeLimit("hello\nworld\x00!", 64)
	if strings.ContainsAny(got, "\n\x00") {
		t.Fatalf("control characters survived: %q", got)
	}
	long := strings.Repeat("a", 100)
	if got := SanitizeLimit(long, 10); len([]rune(got)) != 11 {
		t.Fatalf("truncation failed: %q", got)
	}
}

func TestBuildRID(t *testing.T) {
	if got := BuildRID(7, 100, 200); got != "7:100:200" {
		t.Fatalf("rid = %q", got)
	}
}
