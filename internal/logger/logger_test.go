package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samvad-hq/dxy-snapshot/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{LogLevel: "warn"}, &buf)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { S = nil }()

	log.InfoObj("dropped", "k", 1)
	log.WarnObj("kept", "reading", map[string]any{"ticker": "DXY"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
	reading, ok := entry["reading"].(map[string]any)
	if !ok || reading["ticker"] != "DXY" {
		t.Fatalf("unexpected reading field: %v", entry["reading"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPackageHelpersNoopWithoutInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close without init: %v", err)
	}
}
