package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected line with level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected line with msg=%q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.key+"="+tc.val) {
			t.Fatalf("expected attribute %s=%s in output:\n%s", tc.key, tc.val, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "session", "user", "alice").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "module=session", "user=alice", "k=v"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestSlogLogger_RequestIDFromContext(t *testing.T) {
	log, buf := newTestLogger(t)

	ctx := WithRequestID(context.Background(), "req-42")
	log.Info(ctx, "with id")
	log.Info(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "request_id=req-42") {
		t.Fatalf("expected request_id on first line: %s", lines[0])
	}
	if strings.Contains(lines[1], "request_id") {
		t.Fatalf("unexpected request_id on second line: %s", lines[1])
	}
}

func TestRequestID_Empty(t *testing.T) {
	if _, ok := RequestID(context.Background()); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := RequestID(WithRequestID(context.Background(), "")); ok {
		t.Fatal("empty id must be ignored")
	}
}

func TestWithRequestID_DoesNotWriteIntoCallerSlice(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	backing := make([]any, 2, 8)
	backing[0], backing[1] = "k", "v"
	spare := backing[:4]
	spare[2], spare[3] = "keep", "me"

	got := withRequestID(ctx, backing[:2])

	if len(got) != 4 || got[2] != "request_id" || got[3] != "req-1" {
		t.Fatalf("unexpected args: %v", got)
	}
	if spare[2] != "keep" || spare[3] != "me" {
		t.Fatalf("caller's backing array was overwritten: %v", spare)
	}
}
