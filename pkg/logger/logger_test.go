package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewBuildsForEveryMode(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		if _, err := New(mode, false); err != nil {
			t.Errorf("New(%q, false): %v", mode, err)
		}
	}
}

func TestDebugFlagLowersProductionLevel(t *testing.T) {
	cfg := newZapConfig("production", false)
	if cfg.Level.Level() != zap.InfoLevel {
		t.Errorf("production level = %v, want info", cfg.Level.Level())
	}

	cfg = newZapConfig("production", true)
	if cfg.Level.Level() != zap.DebugLevel {
		t.Errorf("production+debug level = %v, want debug", cfg.Level.Level())
	}
}
