package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("hello")

	if !strings.Contains(buf.String(), appName) {
		t.Errorf("log line should carry the %s prefix: %q", appName, buf.String())
	}
}

func TestStep(t *testing.T) {
	var buf bytes.Buffer
	s := startStep(newLogger(&buf, log.InfoLevel), "load graph")
	if buf.Len() != 0 {
		t.Errorf("step start should log at debug level only, got %q", buf.String())
	}

	s.done("file", "graph.json", "modules", 3)

	out := buf.String()
	for _, want := range []string{"load graph", "file=graph.json", "modules=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("step output missing %q:\n%s", want, out)
		}
	}
}

func TestStepDebug(t *testing.T) {
	var buf bytes.Buffer
	startStep(newLogger(&buf, log.DebugLevel), "render svg")

	if !strings.Contains(buf.String(), "status=started") {
		t.Errorf("debug output = %q, want a start line", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if id := requestIDFromContext(context.Background()); id != "" {
		t.Errorf("requestIDFromContext() = %q, want empty", id)
	}
	ctx := context.WithValue(context.Background(), requestIDKey, "req-7")
	if id := requestIDFromContext(ctx); id != "req-7" {
		t.Errorf("requestIDFromContext() = %q, want req-7", id)
	}
	// The two keys must not collide.
	if loggerFromContext(ctx) != log.Default() {
		t.Error("request id should not be read back as a logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnIndexBuilt(ctx, 4, 1, time.Millisecond)
	h.OnCacheMiss(ctx, "size")
	h.OnResponse(ctx, "req-1", "POST", "/v1/info", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"package index built", "packages=4", "cache miss", "type=size", "id=req-1", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.InfoLevel)}

	h.OnCacheHit(context.Background(), "size")
	h.OnReportWritten(context.Background(), "text", 120, time.Millisecond)

	if buf.Len() != 0 {
		t.Errorf("debug-level hooks should be silent at info level, got %q", buf.String())
	}
}
