package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tc := range cases {
		l := New(tc.level, "json")
		if !l.Handler().Enabled(ctx, tc.enabled) {
			t.Errorf("level %q: expected %v to be enabled", tc.level, tc.enabled)
		}
		if l.Handler().Enabled(ctx, tc.disabled) {
			t.Errorf("level %q: expected %v to be disabled", tc.level, tc.disabled)
		}
	}
}

func TestNewFormats(t *testing.T) {
	if _, ok := New("info", "text").Handler().(*slog.TextHandler); !ok {
		t.Error("expected a text handler for format=text")
	}
	if _, ok := New("info", "json").Handler().(*slog.JSONHandler); !ok {
		t.Error("expected a json handler for format=json")
	}
	if _, ok := New("info", "").Handler().(*slog.JSONHandler); !ok {
		t.Error("expected json as the default format")
	}
}
