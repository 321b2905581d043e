package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tsa-lab/tsaview/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("m") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("m") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("m") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("m") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("rendered", "artifacts", 4)

	out := buf.String()
	for _, want := range []string{"rendered", "artifacts=4", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield the default logger")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(logHooks)
		want string
	}{
		{"preprocess", func(h logHooks) { h.OnPreprocess(ctx, 3, 2, time.Millisecond, nil) }, "preprocessed"},
		{"preprocess failure", func(h logHooks) { h.OnPreprocess(ctx, 3, 2, 0, stderrors.New("bad")) }, "preprocess failed"},
		{"render", func(h logHooks) { h.OnRender(ctx, observability.RenderStats{Surface: "g"}, time.Millisecond, nil) }, "rendered"},
		{"select failure", func(h logHooks) { h.OnSelect(ctx, "node:9", stderrors.New("missing")) }, "selection failed"},
		{"cache hit", func(h logHooks) { h.OnCacheHit(ctx, "artifact") }, "cache hit"},
		{"cache set", func(h logHooks) { h.OnCacheSet(ctx, "matrix", 12) }, "cache set"},
		{"session", func(h logHooks) { h.OnSession(ctx, "abc", true) }, "session opened"},
		{"request", func(h logHooks) { h.OnRequest(ctx, "GET", "/", 200, 0) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.call(logHooks{logger: newLogger(&buf, log.DebugLevel)})
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected output %q", buf.String())
				}
				return
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.want)) {
				t.Errorf("output %q lacks %q", buf.String(), tt.want)
			}
		})
	}
}
