package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New("")
	if err != nil {
		t.Fatalf("empty level should default to info: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be enabled by default")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should stay disabled by default")
	}

	log, err = New("DEBUG")
	if err != nil {
		t.Fatalf("level should be case insensitive: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be enabled")
	}

	if _, err := New("shouty"); err == nil {
		t.Fatalf("unknown level should be rejected")
	}
}
