package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.WarnObj("health endpoint returned error status", "health_error", map[string]any{"status_code": 500})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	obj, ok := fields["health_error"].(map[string]interface{})
	if !ok {
		t.Fatalf("health_error field missing: %#v", fields)
	}
	if obj["status_code"] != 500 {
		t.Fatalf("status_code = %v", obj["status_code"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestInitInstallsProcessLogger(t *testing.T) {
	prev := base
	t.Cleanup(func() { base = prev })

	base = nil
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}

	log := Init("debug")
	if log == nil || base == nil {
		t.Fatalf("expected Init to install a logger")
	}
	if !base.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level enabled")
	}
}
