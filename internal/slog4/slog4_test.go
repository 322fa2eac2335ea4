package slog4

import "testing"

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNilLoggerDiscardsSilently(t *testing.T) {
	var l *Logger
	l.Debug("should not panic: %d", 1)
	l.Info("should not panic")
	l.Warn("should not panic")
	l.Error("should not panic")
}

func TestLoggerGatesOnLevel(t *testing.T) {
	l := New(LevelWarn)
	// These calls exercise the gate path without asserting on log output;
	// the gate's own `at < l.level` comparison is what's under test.
	l.Debug("suppressed")
	l.Info("suppressed")
	l.Warn("emitted")
	l.Error("emitted")
}
