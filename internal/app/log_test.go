package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBlitHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		runID   string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runID:   "run-123",
			level:   slog.LevelInfo,
			message: "migration started",
			want:    "2024-06-15T14:30:45Z\tINFO\trun-123\tmigration started\n",
		},
		{
			name:    "warn level",
			runID:   "run-456",
			level:   slog.LevelWarn,
			message: "recording run outcome failed",
			want:    "2024-06-15T14:30:45Z\tWARN\trun-456\trecording run outcome failed\n",
		},
		{
			name:    "with record attrs",
			runID:   "run-789",
			level:   slog.LevelInfo,
			message: "project transformed",
			attrs:   []slog.Attr{slog.Int("cels", 2), slog.String("stage", "transform")},
			want:    "2024-06-15T14:30:45Z\tINFO\trun-789\tproject transformed\tcels=2\tstage=transform\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &blitHandler{w: &buf, runID: tt.runID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestBlitHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &blitHandler{w: &buf, runID: "run-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "staging")}).(*blitHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "commit", 0)
	r.AddAttrs(slog.String("mode", "replace"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "\ta=1\tcomponent=staging\tmode=replace\n") {
		t.Errorf("attrs out of order or missing: %q", got)
	}
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
}

func TestBlitHandler_Enabled(t *testing.T) {
	tests := []struct {
		min   slog.Level
		level slog.Level
		want  bool
	}{
		{slog.LevelInfo, slog.LevelDebug, false},
		{slog.LevelInfo, slog.LevelInfo, true},
		{slog.LevelInfo, slog.LevelError, true},
		{slog.LevelDebug, slog.LevelDebug, true},
	}
	for _, tt := range tests {
		h := &blitHandler{level: tt.min}
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) with min %v = %v, want %v", tt.level, tt.min, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "run-42", slog.LevelInfo)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("shown", "key", "v")
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "hidden") {
		t.Errorf("debug record written at info level: %q", got)
	}
	if !strings.Contains(got, "\tINFO\trun-42\tshown\tkey=v\n") {
		t.Errorf("log file = %q", got)
	}
}

func TestLogWriter(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func(*os.File) bool { return false }
	if w := logWriter(f, os.Stderr); w != f {
		t.Errorf("logWriter() without a terminal = %T, want the log file only", w)
	}

	isTerminal = func(*os.File) bool { return true }
	if w := logWriter(f, os.Stderr); w == f {
		t.Error("logWriter() with a terminal should also write to stderr")
	}
}
