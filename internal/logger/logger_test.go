package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and terminal detection
// forced to tty, and returns what was written.
func captureStderr(t *testing.T, tty bool, fn func()) string {
	t.Helper()
	prevIsTerminal, prevStderr := isTerminal, os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	isTerminal = func(int) bool { return tty }
	os.Stderr = w
	defer func() {
		isTerminal, os.Stderr = prevIsTerminal, prevStderr
		Init(LevelInfo, nil)
	}()

	fn()
	_ = w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

func TestInit_Colour(t *testing.T) {
	tests := []struct {
		name      string
		tty       bool
		logFile   bool
		wantColor bool
	}{
		{name: "terminal", tty: true, wantColor: true},
		{name: "pipe", tty: false},
		{name: "terminal with log file", tty: true, logFile: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var file bytes.Buffer
			out := captureStderr(t, tc.tty, func() {
				var sink io.Writer
				if tc.logFile {
					sink = &file
				}
				Init(LevelInfo, sink)
				Info("labels ready", "count", 3)
			})
			if got := strings.Contains(out, "\033["); got != tc.wantColor {
				t.Fatalf("ANSI codes present = %v, want %v in %q", got, tc.wantColor, out)
			}
			if !strings.Contains(out, "labels ready") {
				t.Fatalf("message missing from stderr: %q", out)
			}
			if tc.logFile && !strings.Contains(file.String(), `"count":3`) {
				t.Fatalf("log file missing record: %q", file.String())
			}
		})
	}
}

func TestInit_LevelFiltersBothSinks(t *testing.T) {
	var file bytes.Buffer
	out := captureStderr(t, false, func() {
		Init(LevelWarn, &file)
		Info("hidden")
		Warn("shown")
	})
	if strings.Contains(out, "hidden") || strings.Contains(file.String(), "hidden") {
		t.Fatalf("info record passed a warn-level logger: %q / %q", out, file.String())
	}
	if !strings.Contains(out, "shown") || !strings.Contains(file.String(), "shown") {
		t.Fatalf("warn record missing: %q / %q", out, file.String())
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	captureStderr(t, false, func() {
		Init(LevelInfo, &buf)
		With("request_id", "req-1").Info("tagged")
	})
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Fatalf("expected request_id in JSON log, got %q", buf.String())
	}
}
