package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPrettyHandler_Structural(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelDebug}
	h := NewPrettyHandler(&buf, opts, false)
	l := slog.New(h)

	t.Run("WithAttrs", func(t *testing.T) {
		buf.Reset()
		l2 := l.With("request_id", "abc-123")
		l2.Info("test message", "user", "alice")

		output := buf.String()
		if !strings.Contains(output, "request_id=") || !strings.Contains(output, "abc-123") {
			t.Errorf("output missing persistent attr: %q", output)
		}
		if !strings.Contains(output, "user=") || !strings.Contains(output, "alice") {
			t.Errorf("output missing record attr: %q", output)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("billing").With("amount", 100)
		l2.Info("payment processing", "currency", "USD")

		output := buf.String()
		if !strings.Contains(output, "billing.amount=") || !strings.Contains(output, "100") {
			t.Errorf("output missing grouped persistent attr: %q", output)
		}
		if !strings.Contains(output, "billing.currency=") || !strings.Contains(output, "USD") {
			t.Errorf("output missing grouped record attr: %q", output)
		}
	})

	t.Run("NestedGroups", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("outer").WithGroup("inner").With("key", "val")
		l2.Info("msg")

		output := buf.String()
		if !strings.Contains(output, "outer.inner.key=") || !strings.Contains(output, "val") {
			t.Errorf("output missing nested grouped attr: %q", output)
		}
	})
}

func TestPrettyHandler_GroupAttrAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelDebug, ReplaceAttr: RedactAttr}, false)
	slog.New(h).Info("tagging", slog.Group("image", slog.Int("width", 3), slog.String("pixels", "raw")))

	out := buf.String()
	if !strings.Contains(out, "image.width=3") {
		t.Fatalf("group member not flattened: %q", out)
	}
	if !strings.Contains(out, "image.pixels=[REDACTED]") {
		t.Fatalf("group member not redacted: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
}

func TestPrettyHandler_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelDebug}, false)
	text := slog.New(h).With("lane", "text")
	image := slog.New(h).With("lane", "image")

	const perLane = 50
	var wg sync.WaitGroup
	for _, l := range []*slog.Logger{text, image} {
		wg.Add(1)
		go func(l *slog.Logger) {
			defer wg.Done()
			for i := 0; i < perLane; i++ {
				l.Info("step", "n", i)
			}
		}(l)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2*perLane {
		t.Fatalf("got %d lines, want %d", len(lines), 2*perLane)
	}
	for _, line := range lines {
		if strings.Count(line, "lane=") != 1 || !strings.Contains(line, " step ") {
			t.Fatalf("malformed line %q", line)
		}
	}
}

func TestPrettyHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelWarn}, false)
	if h.Enabled(context.Background(), LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), LevelError) {
		t.Fatal("error should be enabled at warn level")
	}
	if NewPrettyHandler(&buf, nil, false).Enabled(context.Background(), LevelDebug) {
		t.Fatal("nil options should default to info")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiHandler_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelInfo}
	m := newMultiHandler(
		NewPrettyHandler(failingWriter{}, opts, false),
		slog.NewJSONHandler(&buf, opts),
	)

	err := m.Handle(context.Background(), slog.NewRecord(time.Now(), LevelInfo, "still logged", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), "still logged") {
		t.Fatalf("second handler skipped: %q", buf.String())
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelInfo}
	m := newMultiHandler(NewPrettyHandler(&a, opts, false), slog.NewJSONHandler(&b, opts))
	slog.New(m).With("request_id", "r-7").WithGroup("lane").Info("done", "kind", "image")

	if !strings.Contains(a.String(), "request_id=r-7") || !strings.Contains(a.String(), "lane.kind=image") {
		t.Fatalf("pretty output = %q", a.String())
	}
	if !strings.Contains(b.String(), `"request_id":"r-7"`) || !strings.Contains(b.String(), fmt.Sprintf("%q:{%q:%q}", "lane", "kind", "image")) {
		t.Fatalf("json output = %q", b.String())
	}
}
